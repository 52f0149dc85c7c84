package cloud

import "regexp"

// Metadata is the set of AWS resource identifiers discovered from an
// investigation's alert labels, pod spec, and container images, in the
// precedence order the original collector applies: alert labels first, then
// the Kubernetes node name, then container image registries.
type Metadata struct {
	Region           string
	EC2InstanceIDs   []string
	EBSVolumeIDs     []string
	LoadBalancerName string
	TargetGroupARN   string
	RDSInstanceID    string
	SecurityGroupIDs []string
	NATGatewayIDs    []string
	VPCEndpointIDs   []string
	ECRRepositories  []ECRImageRef
}

// ECRImageRef identifies one container image hosted in ECR.
type ECRImageRef struct {
	AccountID  string
	Region     string
	Repository string
	Tag        string
}

var ecrImageRegex = regexp.MustCompile(`^(\d+)\.dkr\.ecr\.([a-z0-9-]+)\.amazonaws\.com/([^:]+):(.+)$`)

// ExtractMetadata derives AWS identifiers from alert labels, the pod's node
// name, and its container images, in that precedence order (the original
// collector's extract_aws_metadata_from_investigation). Later sources only
// add identifiers the earlier sources didn't already supply for the same
// field; list-valued fields are deduplicated.
func ExtractMetadata(alertLabels map[string]string, nodeName string, containerImages []string) Metadata {
	var m Metadata

	if v := firstNonEmpty(alertLabels, "aws_region", "region"); v != "" {
		m.Region = v
	}
	if v := firstNonEmpty(alertLabels, "instance_id", "instance"); hasPrefix(v, "i-") {
		m.EC2InstanceIDs = append(m.EC2InstanceIDs, v)
	}
	if v := alertLabels["volume_id"]; hasPrefix(v, "vol-") {
		m.EBSVolumeIDs = append(m.EBSVolumeIDs, v)
	}
	if v := firstNonEmpty(alertLabels, "load_balancer", "load_balancer_name"); v != "" {
		m.LoadBalancerName = v
	}
	if v := firstNonEmpty(alertLabels, "target_group", "target_group_arn"); v != "" {
		m.TargetGroupARN = v
	}
	if v := firstNonEmpty(alertLabels, "db_instance_id", "dbinstance_identifier"); v != "" {
		m.RDSInstanceID = v
	}
	if v := alertLabels["security_group_id"]; hasPrefix(v, "sg-") {
		m.SecurityGroupIDs = append(m.SecurityGroupIDs, v)
	}
	if v := alertLabels["nat_gateway_id"]; hasPrefix(v, "nat-") {
		m.NATGatewayIDs = append(m.NATGatewayIDs, v)
	}
	if v := alertLabels["vpc_endpoint_id"]; hasPrefix(v, "vpce-") {
		m.VPCEndpointIDs = append(m.VPCEndpointIDs, v)
	}

	if hasPrefix(nodeName, "i-") {
		m.EC2InstanceIDs = append(m.EC2InstanceIDs, nodeName)
	}

	for _, image := range containerImages {
		match := ecrImageRegex.FindStringSubmatch(image)
		if match == nil {
			continue
		}
		m.ECRRepositories = append(m.ECRRepositories, ECRImageRef{
			AccountID:  match[1],
			Region:     match[2],
			Repository: match[3],
			Tag:        match[4],
		})
	}

	m.EC2InstanceIDs = dedup(m.EC2InstanceIDs)
	m.EBSVolumeIDs = dedup(m.EBSVolumeIDs)
	m.SecurityGroupIDs = dedup(m.SecurityGroupIDs)
	m.NATGatewayIDs = dedup(m.NATGatewayIDs)
	m.VPCEndpointIDs = dedup(m.VPCEndpointIDs)

	return m
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func dedup(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
