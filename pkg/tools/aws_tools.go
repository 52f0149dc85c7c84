package tools

import (
	"context"
	"time"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/cloud"
)

func awsMetadata(inv *core.Investigation) map[string]interface{} {
	if inv == nil {
		return nil
	}
	return inv.Evidence.AWS.Metadata
}

func discoveredMetaString(inv *core.Investigation, key string) string {
	md := awsMetadata(inv)
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

// discoveredMetaFirst returns the first entry of a string-list metadata
// field (e.g. the first discovered EC2 instance ID), or "" if empty.
func discoveredMetaFirst(inv *core.Investigation, key string) string {
	md := awsMetadata(inv)
	if md == nil {
		return ""
	}
	if v, ok := md[key].([]string); ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func awsRegion(req Request) (string, string) {
	region := argString(req.Args, "region", discoveredMetaString(req.Investigation, "region"))
	if region == "" {
		return "", "missing_required_args:region"
	}
	if len(req.ChatPolicy.AWSRegionAllowlist) > 0 && !req.ChatPolicy.CheckRegion(region) {
		return "", "region_not_allowed:" + region
	}
	return region, ""
}

func toolAWSEC2Status(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Cloud == nil {
		return errResult("aws_error:not_configured")
	}
	region, err := awsRegion(req)
	if err != "" {
		return errResult(err)
	}
	instanceID := argString(req.Args, "instance_id", discoveredMetaFirst(req.Investigation, "ec2_instance_ids"))
	if instanceID == "" {
		return errResult("missing_required_args:instance_id")
	}
	result, errCode := deps.Cloud.EC2InstanceStatus(ctx, region, instanceID)
	if errCode != "" {
		return errResult("aws_error:" + errCode)
	}
	return okResult(result)
}

func toolAWSEBSHealth(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Cloud == nil {
		return errResult("aws_error:not_configured")
	}
	region, err := awsRegion(req)
	if err != "" {
		return errResult(err)
	}
	volumeID := argString(req.Args, "volume_id", discoveredMetaFirst(req.Investigation, "ebs_volume_ids"))
	if volumeID == "" {
		return errResult("missing_required_args:volume_id")
	}
	result, errCode := deps.Cloud.EBSVolumeHealth(ctx, region, volumeID)
	if errCode != "" {
		return errResult("aws_error:" + errCode)
	}
	return okResult(result)
}

func toolAWSELBHealth(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Cloud == nil {
		return errResult("aws_error:not_configured")
	}
	region, err := awsRegion(req)
	if err != "" {
		return errResult(err)
	}
	targetGroupARN := argString(req.Args, "target_group_arn", discoveredMetaString(req.Investigation, "load_balancer"))
	if targetGroupARN == "" {
		return errResult("missing_required_args:target_group_arn")
	}
	result, errCode := deps.Cloud.ELBv2TargetHealth(ctx, region, targetGroupARN)
	if errCode != "" {
		return errResult("aws_error:" + errCode)
	}
	return okResult(result)
}

func toolAWSRDSStatus(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Cloud == nil {
		return errResult("aws_error:not_configured")
	}
	region, err := awsRegion(req)
	if err != "" {
		return errResult(err)
	}
	dbInstanceID := argString(req.Args, "db_instance_id", discoveredMetaString(req.Investigation, "rds_instance_id"))
	if dbInstanceID == "" {
		return errResult("missing_required_args:db_instance_id")
	}
	result, errCode := deps.Cloud.RDSInstanceStatus(ctx, region, dbInstanceID)
	if errCode != "" {
		return errResult("aws_error:" + errCode)
	}
	return okResult(result)
}

func toolAWSCloudTrailEvents(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Cloud == nil {
		return errResult("aws_error:not_configured")
	}
	region, err := awsRegion(req)
	if err != "" {
		return errResult(err)
	}
	end := time.Now()
	start := end.Add(-30 * time.Minute)
	if v, ok := req.Args["start"].(string); ok && v != "" {
		if t, parseErr := time.Parse(time.RFC3339, v); parseErr == nil {
			start = t
		}
	}
	if v, ok := req.Args["end"].(string); ok && v != "" {
		if t, parseErr := time.Parse(time.RFC3339, v); parseErr == nil {
			end = t
		}
	}
	var resourceIDs []string
	if v, ok := req.Args["resource_ids"].([]string); ok {
		resourceIDs = v
	}

	events, errCode := deps.Cloud.LookupEvents(ctx, region, start, end, resourceIDs)
	if errCode != "" {
		return errResult("aws_error:" + errCode)
	}

	grouping := argString(req.Args, "projection", "chronological")
	if grouping == "grouped" {
		grouped := cloud.GroupByCategory(events)
		out := make(map[string]interface{}, len(grouped))
		for cat, evs := range grouped {
			out[cat] = cloudTrailEventMaps(evs)
		}
		return okResult(map[string]interface{}{"grouped": out})
	}
	return okResult(map[string]interface{}{"events": cloudTrailEventMaps(events)})
}

func cloudTrailEventMaps(events []core.CloudTrailEvent) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]interface{}{
			"event_time": e.EventTime.Format(time.RFC3339),
			"event_name": e.EventName,
			"category":   e.Category,
			"username":   e.Username,
			"resources":  e.Resources,
		})
	}
	return out
}
