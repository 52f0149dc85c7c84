package cloud

import "testing"

func TestExtractMetadata_AlertLabelsTakePrecedence(t *testing.T) {
	labels := map[string]string{
		"aws_region":  "us-west-2",
		"instance_id": "i-0123456789abcdef0",
		"volume_id":   "vol-0a1b2c3d",
	}
	m := ExtractMetadata(labels, "ip-10-0-0-1.ec2.internal", nil)

	if m.Region != "us-west-2" {
		t.Errorf("Region = %q, want us-west-2", m.Region)
	}
	if len(m.EC2InstanceIDs) != 1 || m.EC2InstanceIDs[0] != "i-0123456789abcdef0" {
		t.Errorf("EC2InstanceIDs = %v", m.EC2InstanceIDs)
	}
	if len(m.EBSVolumeIDs) != 1 || m.EBSVolumeIDs[0] != "vol-0a1b2c3d" {
		t.Errorf("EBSVolumeIDs = %v", m.EBSVolumeIDs)
	}
}

func TestExtractMetadata_NodeNameFallsBackToEC2Instance(t *testing.T) {
	m := ExtractMetadata(nil, "i-0fedcba9876543210", nil)
	if len(m.EC2InstanceIDs) != 1 || m.EC2InstanceIDs[0] != "i-0fedcba9876543210" {
		t.Errorf("EC2InstanceIDs = %v", m.EC2InstanceIDs)
	}
}

func TestExtractMetadata_NonInstanceNodeNameIgnored(t *testing.T) {
	m := ExtractMetadata(nil, "ip-10-0-0-1.ec2.internal", nil)
	if len(m.EC2InstanceIDs) != 0 {
		t.Errorf("EC2InstanceIDs = %v, want empty", m.EC2InstanceIDs)
	}
}

func TestExtractMetadata_DedupesInstanceIDs(t *testing.T) {
	labels := map[string]string{"instance_id": "i-0123456789abcdef0"}
	m := ExtractMetadata(labels, "i-0123456789abcdef0", nil)
	if len(m.EC2InstanceIDs) != 1 {
		t.Errorf("EC2InstanceIDs = %v, want deduped to 1", m.EC2InstanceIDs)
	}
}

func TestExtractMetadata_ECRImageRegex(t *testing.T) {
	images := []string{
		"123456789012.dkr.ecr.us-east-1.amazonaws.com/myapp:v1.2.3",
		"docker.io/library/nginx:latest",
	}
	m := ExtractMetadata(nil, "", images)
	if len(m.ECRRepositories) != 1 {
		t.Fatalf("ECRRepositories = %v, want 1 match", m.ECRRepositories)
	}
	ref := m.ECRRepositories[0]
	if ref.AccountID != "123456789012" || ref.Region != "us-east-1" || ref.Repository != "myapp" || ref.Tag != "v1.2.3" {
		t.Errorf("ref = %+v", ref)
	}
}

func TestExtractMetadata_InvalidPrefixesIgnored(t *testing.T) {
	labels := map[string]string{
		"instance_id":       "not-an-instance",
		"volume_id":         "not-a-volume",
		"security_group_id": "not-a-sg",
	}
	m := ExtractMetadata(labels, "", nil)
	if len(m.EC2InstanceIDs) != 0 || len(m.EBSVolumeIDs) != 0 || len(m.SecurityGroupIDs) != 0 {
		t.Errorf("expected all ids ignored, got %+v", m)
	}
}
