package cloud

import (
	"context"
	"testing"
)

func TestRegistry_CachesClientsPerServiceAndRegion(t *testing.T) {
	reg, err := newRegistry(context.Background())
	if err != nil {
		t.Fatalf("newRegistry() error = %v", err)
	}

	east1 := reg.ec2For("us-east-1")
	east1Again := reg.ec2For("us-east-1")
	west2 := reg.ec2For("us-west-2")

	if east1 != east1Again {
		t.Error("expected the same client instance for repeated calls with the same region")
	}
	if east1 == west2 {
		t.Error("expected distinct client instances for distinct regions")
	}
}

func TestRegistry_DistinctServicesDoNotShareRegionCache(t *testing.T) {
	reg, err := newRegistry(context.Background())
	if err != nil {
		t.Fatalf("newRegistry() error = %v", err)
	}

	reg.ec2For("us-east-1")
	reg.rdsFor("us-east-1")

	if len(reg.ec2Clients) != 1 || len(reg.rdsClients) != 1 {
		t.Errorf("ec2Clients=%d rdsClients=%d, want 1 each", len(reg.ec2Clients), len(reg.rdsClients))
	}
}
