package cloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// SecurityGroupRules reports the ingress/egress rules of one security group.
func (c *Client) SecurityGroupRules(ctx context.Context, region, groupID string) (map[string]interface{}, string) {
	out, err := c.reg.ec2For(region).DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{groupID},
	})
	if err != nil {
		return nil, wrap("security_group", groupID, err)
	}
	if len(out.SecurityGroups) == 0 {
		return map[string]interface{}{"group_id": groupID, "state": "not_found"}, ""
	}
	sg := out.SecurityGroups[0]
	ingress := make([]map[string]interface{}, 0, len(sg.IpPermissions))
	for _, p := range sg.IpPermissions {
		ingress = append(ingress, map[string]interface{}{
			"protocol": aws0(p.IpProtocol),
			"from_port": aws0int32(p.FromPort),
			"to_port":   aws0int32(p.ToPort),
		})
	}
	egress := make([]map[string]interface{}, 0, len(sg.IpPermissionsEgress))
	for _, p := range sg.IpPermissionsEgress {
		egress = append(egress, map[string]interface{}{
			"protocol": aws0(p.IpProtocol),
			"from_port": aws0int32(p.FromPort),
			"to_port":   aws0int32(p.ToPort),
		})
	}
	return map[string]interface{}{
		"group_id": groupID,
		"ingress":  ingress,
		"egress":   egress,
	}, ""
}

// NATGatewayStatus reports the state of one NAT gateway.
func (c *Client) NATGatewayStatus(ctx context.Context, region, natGatewayID string) (map[string]interface{}, string) {
	out, err := c.reg.ec2For(region).DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{natGatewayID},
	})
	if err != nil {
		return nil, wrap("nat_gateway", natGatewayID, err)
	}
	if len(out.NatGateways) == 0 {
		return map[string]interface{}{"nat_gateway_id": natGatewayID, "state": "not_found"}, ""
	}
	gw := out.NatGateways[0]
	return map[string]interface{}{
		"nat_gateway_id": natGatewayID,
		"state":          string(gw.State),
		"failure_code":   aws0(gw.FailureCode),
		"failure_message": aws0(gw.FailureMessage),
	}, ""
}

// VPCEndpointStatus reports the state of one VPC endpoint.
func (c *Client) VPCEndpointStatus(ctx context.Context, region, endpointID string) (map[string]interface{}, string) {
	out, err := c.reg.ec2For(region).DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		VpcEndpointIds: []string{endpointID},
	})
	if err != nil {
		return nil, wrap("vpc_endpoint", endpointID, err)
	}
	if len(out.VpcEndpoints) == 0 {
		return map[string]interface{}{"vpc_endpoint_id": endpointID, "state": "not_found"}, ""
	}
	ep := out.VpcEndpoints[0]
	return map[string]interface{}{
		"vpc_endpoint_id": endpointID,
		"state":           string(ep.State),
		"service_name":    aws0(ep.ServiceName),
	}, ""
}
