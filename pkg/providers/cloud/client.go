// Package cloud implements the AWS evidence provider (§4.5): per-resource
// health lookups and CloudTrail event collection backing the AWS evidence
// slot, grounded on the original collectors/aws_context.py resource-by-
// resource extraction.
package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/sirupsen/logrus"
)

// Client gathers AWS resource evidence across regions, caching one SDK
// sub-client per (service, region) in its registry.
type Client struct {
	reg *registry
	log *logrus.Entry
}

// NewClient builds a Client using the process's default AWS credential chain
// (environment, shared config, IMDS, IRSA) — no region is fixed at
// construction since a single investigation may touch resources in several
// regions.
func NewClient(ctx context.Context, log *logrus.Entry) (*Client, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	reg, err := newRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{reg: reg, log: log.WithField("component", "aws_client")}, nil
}

// wrap turns a failed lookup into the "{prefix}:{id}:{ExceptionType}" error
// string the Python collector used, so collector errors stay uniform across
// independently-attempted resources.
func wrap(prefix, id string, err error) string {
	return fmt.Sprintf("%s:%s:%T", prefix, id, err)
}

// EC2InstanceStatus reports instance state and status-check results for one
// EC2 instance.
func (c *Client) EC2InstanceStatus(ctx context.Context, region, instanceID string) (map[string]interface{}, string) {
	out, err := c.reg.ec2For(region).DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, wrap("ec2_instance", instanceID, err)
	}
	if len(out.InstanceStatuses) == 0 {
		instOut, err := c.reg.ec2For(region).DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			InstanceIds: []string{instanceID},
		})
		if err != nil || len(instOut.Reservations) == 0 || len(instOut.Reservations[0].Instances) == 0 {
			return map[string]interface{}{"instance_id": instanceID, "state": "not_found"}, ""
		}
		inst := instOut.Reservations[0].Instances[0]
		return map[string]interface{}{
			"instance_id": instanceID,
			"state":       string(inst.State.Name),
		}, ""
	}
	status := out.InstanceStatuses[0]
	return map[string]interface{}{
		"instance_id":       instanceID,
		"state":             string(status.InstanceState.Name),
		"instance_status":   string(status.InstanceStatus.Status),
		"system_status":     string(status.SystemStatus.Status),
		"events":            ec2StatusEvents(status.Events),
	}, ""
}

func ec2StatusEvents(events []ec2types.InstanceStatusEvent) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]interface{}{
			"code":        string(e.Code),
			"description": aws0(e.Description),
		})
	}
	return out
}

// EBSVolumeHealth reports the attachment state and status of one EBS volume.
func (c *Client) EBSVolumeHealth(ctx context.Context, region, volumeID string) (map[string]interface{}, string) {
	out, err := c.reg.ec2For(region).DescribeVolumes(ctx, &ec2.DescribeVolumesInput{
		VolumeIds: []string{volumeID},
	})
	if err != nil {
		return nil, wrap("ebs_volume", volumeID, err)
	}
	if len(out.Volumes) == 0 {
		return map[string]interface{}{"volume_id": volumeID, "state": "not_found"}, ""
	}
	vol := out.Volumes[0]
	attachments := make([]map[string]interface{}, 0, len(vol.Attachments))
	for _, a := range vol.Attachments {
		attachments = append(attachments, map[string]interface{}{
			"instance_id": aws0(a.InstanceId),
			"state":       string(a.State),
			"device":      aws0(a.Device),
		})
	}
	return map[string]interface{}{
		"volume_id":   volumeID,
		"state":       string(vol.State),
		"size_gib":    aws0int32(vol.Size),
		"volume_type": string(vol.VolumeType),
		"attachments": attachments,
	}, ""
}

// ELBv2TargetHealth reports target-health descriptions for one ALB/NLB
// target group.
func (c *Client) ELBv2TargetHealth(ctx context.Context, region, targetGroupARN string) (map[string]interface{}, string) {
	out, err := c.reg.elbFor(region).DescribeTargetHealth(ctx, &elasticloadbalancingv2.DescribeTargetHealthInput{
		TargetGroupArn: &targetGroupARN,
	})
	if err != nil {
		return nil, wrap("elbv2_target_group", targetGroupARN, err)
	}
	targets := make([]map[string]interface{}, 0, len(out.TargetHealthDescriptions))
	for _, d := range out.TargetHealthDescriptions {
		targets = append(targets, map[string]interface{}{
			"target_id": aws0(d.Target.Id),
			"port":      aws0int32(d.Target.Port),
			"state":     string(d.TargetHealth.State),
			"reason":    string(d.TargetHealth.Reason),
			"description": aws0(d.TargetHealth.Description),
		})
	}
	return map[string]interface{}{
		"target_group_arn": targetGroupARN,
		"targets":          targets,
	}, ""
}

// RDSInstanceStatus reports the lifecycle status of one RDS instance.
func (c *Client) RDSInstanceStatus(ctx context.Context, region, dbInstanceID string) (map[string]interface{}, string) {
	out, err := c.reg.rdsFor(region).DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: &dbInstanceID,
	})
	if err != nil {
		return nil, wrap("rds_instance", dbInstanceID, err)
	}
	if len(out.DBInstances) == 0 {
		return map[string]interface{}{"db_instance_id": dbInstanceID, "status": "not_found"}, ""
	}
	db := out.DBInstances[0]
	result := map[string]interface{}{
		"db_instance_id": dbInstanceID,
		"status":         aws0(db.DBInstanceStatus),
		"engine":         aws0(db.Engine),
		"multi_az":       db.MultiAZ != nil && *db.MultiAZ,
	}
	if db.PendingModifiedValues != nil {
		result["pending_modifications"] = true
	}
	return result, ""
}

// ECRImageScanFindings reports the most recent scan summary for one ECR
// image digest/tag.
func (c *Client) ECRImageScanFindings(ctx context.Context, region, repository, imageTag string) (map[string]interface{}, string) {
	tag := imageTag
	out, err := c.reg.ecrFor(region).DescribeImageScanFindings(ctx, &ecr.DescribeImageScanFindingsInput{
		RepositoryName: &repository,
		ImageId:        &ecrtypes.ImageIdentifier{ImageTag: &tag},
	})
	if err != nil {
		return nil, wrap("ecr_image", repository+":"+imageTag, err)
	}
	counts := map[string]interface{}{}
	if out.ImageScanFindings != nil {
		for sev, n := range out.ImageScanFindings.FindingSeverityCounts {
			counts[string(sev)] = n
		}
	}
	return map[string]interface{}{
		"repository":     repository,
		"image_tag":      imageTag,
		"scan_status":    string(out.ImageScanStatus.Status),
		"severity_counts": counts,
	}, ""
}

func aws0(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func aws0int32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
