package collectors

import (
	"context"
	"time"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/cloud"
)

// extractMetadataFromEvidence adapts cloud.ExtractMetadata's signature to
// what's available on the in-flight investigation at step 8.
func extractMetadataFromEvidence(inv *core.Investigation, nodeName string, images []string) cloud.Metadata {
	return cloud.ExtractMetadata(inv.Alert.Labels, nodeName, images)
}

// CollectAWSAndSCM runs the two optional, feature-flagged evidence
// collectors (§4.1 step 8): AWS resource health/CloudTrail and GitHub
// recent activity. Each is wrapped in a guard that swallows failures; they
// never block or fail the pipeline.
func CollectAWSAndSCM(ctx context.Context, inv *core.Investigation, deps Deps) {
	if deps.Config.AWS.EvidenceEnabled && deps.Cloud != nil {
		_ = runGuarded("aws", ctx, inv, deps, AWSMetadata)
	}
	if deps.Config.GitHub.EvidenceEnabled && deps.SCM != nil {
		_ = runGuarded("github", ctx, inv, deps, SCMDiscovery)
	}
}

// AWSMetadata extracts AWS resource identifiers from the investigation's
// alert labels, node name, and container images, then fetches resource
// health and CloudTrail events for whatever it found (§4.2).
func AWSMetadata(ctx context.Context, inv *core.Investigation, deps Deps) error {
	nodeName, _ := inv.Evidence.K8s.PodInfo["node"].(string)
	var images []string
	if raw, ok := inv.Evidence.K8s.PodInfo["containers"].([]string); ok {
		images = raw
	}

	md := extractMetadataFromEvidence(inv, nodeName, images)
	region := md.Region
	if region == "" {
		region = deps.Config.AWS.Region
	}

	metadataMap := map[string]interface{}{
		"region":            region,
		"ec2_instance_ids":  md.EC2InstanceIDs,
		"ebs_volume_ids":    md.EBSVolumeIDs,
		"load_balancer":     md.LoadBalancerName,
		"rds_instance_id":   md.RDSInstanceID,
		"security_group_ids": md.SecurityGroupIDs,
		"ecr_repositories":  md.ECRRepositories,
	}
	inv.Evidence.AWS.Metadata = metadataMap

	for _, id := range md.EC2InstanceIDs {
		result, errStr := deps.Cloud.EC2InstanceStatus(ctx, region, id)
		if errStr != "" {
			inv.AddError("aws", errStr)
			continue
		}
		if inv.Evidence.AWS.EC2Instances == nil {
			inv.Evidence.AWS.EC2Instances = map[string]interface{}{}
		}
		inv.Evidence.AWS.EC2Instances[id] = result
	}

	for _, id := range md.EBSVolumeIDs {
		result, errStr := deps.Cloud.EBSVolumeHealth(ctx, region, id)
		if errStr != "" {
			inv.AddError("aws", errStr)
			continue
		}
		if inv.Evidence.AWS.EBSVolumes == nil {
			inv.Evidence.AWS.EBSVolumes = map[string]interface{}{}
		}
		inv.Evidence.AWS.EBSVolumes[id] = result
	}

	if md.RDSInstanceID != "" {
		result, errStr := deps.Cloud.RDSInstanceStatus(ctx, region, md.RDSInstanceID)
		if errStr != "" {
			inv.AddError("aws", errStr)
		} else {
			inv.Evidence.AWS.RDSInstances = map[string]interface{}{md.RDSInstanceID: result}
		}
	}

	lookback := time.Duration(deps.Config.AWS.CloudTrailLookbackMinutes) * time.Minute
	if lookback <= 0 {
		lookback = 30 * time.Minute
	}
	end := inv.TimeWindow.EndTime
	start := end.Add(-lookback)
	resourceIDs := append(append([]string{}, md.EC2InstanceIDs...), md.EBSVolumeIDs...)
	events, errStr := deps.Cloud.LookupEvents(ctx, region, start, end, resourceIDs)
	if errStr != "" {
		inv.AddError("aws", errStr)
		return nil
	}
	inv.Evidence.AWS.CloudTrailEvents = events
	inv.Evidence.AWS.CloudTrailGrouped = cloud.GroupByCategory(events)
	inv.Evidence.AWS.CloudTrailMetadata = map[string]interface{}{
		"lookback_minutes": deps.Config.AWS.CloudTrailLookbackMinutes,
		"max_events":       deps.Config.AWS.CloudTrailMaxEvents,
	}
	return nil
}
