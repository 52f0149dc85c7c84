package cloud

import (
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"context"
)

// registry caches one SDK sub-client per (service, region), guarded by a
// mutex (§5 shared resources): region is only known once the investigation's
// AWS metadata is extracted, so clients can't all be built eagerly at
// process start.
type registry struct {
	mu          sync.Mutex
	baseCfg     aws.Config
	ec2Clients  map[string]*ec2.Client
	elbClients  map[string]*elasticloadbalancingv2.Client
	rdsClients  map[string]*rds.Client
	ecrClients  map[string]*ecr.Client
	ctClients   map[string]*cloudtrail.Client
}

func newRegistry(ctx context.Context) (*registry, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &registry{
		baseCfg:    cfg,
		ec2Clients: map[string]*ec2.Client{},
		elbClients: map[string]*elasticloadbalancingv2.Client{},
		rdsClients: map[string]*rds.Client{},
		ecrClients: map[string]*ecr.Client{},
		ctClients:  map[string]*cloudtrail.Client{},
	}, nil
}

func (r *registry) ec2For(region string) *ec2.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.ec2Clients[region]; ok {
		return c
	}
	c := ec2.NewFromConfig(r.baseCfg, func(o *ec2.Options) { o.Region = region })
	r.ec2Clients[region] = c
	return c
}

func (r *registry) elbFor(region string) *elasticloadbalancingv2.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.elbClients[region]; ok {
		return c
	}
	c := elasticloadbalancingv2.NewFromConfig(r.baseCfg, func(o *elasticloadbalancingv2.Options) { o.Region = region })
	r.elbClients[region] = c
	return c
}

func (r *registry) rdsFor(region string) *rds.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rdsClients[region]; ok {
		return c
	}
	c := rds.NewFromConfig(r.baseCfg, func(o *rds.Options) { o.Region = region })
	r.rdsClients[region] = c
	return c
}

func (r *registry) ecrFor(region string) *ecr.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.ecrClients[region]; ok {
		return c
	}
	c := ecr.NewFromConfig(r.baseCfg, func(o *ecr.Options) { o.Region = region })
	r.ecrClients[region] = c
	return c
}

func (r *registry) cloudtrailFor(region string) *cloudtrail.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.ctClients[region]; ok {
		return c
	}
	c := cloudtrail.NewFromConfig(r.baseCfg, func(o *cloudtrail.Options) { o.Region = region })
	r.ctClients[region] = c
	return c
}
