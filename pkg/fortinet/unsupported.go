package fortinet

import (
	"context"
)

// 以下查询在 FortiOS 上没有实现，统一返回 *NotSupportedError

func notSupported(getter string) (map[string]interface{}, error) {
	return nil, &NotSupportedError{Getter: getter}
}

func (d *Driver) GetEnvironment(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_environment")
}

func (d *Driver) GetBGPNeighbors(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_bgp_neighbors")
}

func (d *Driver) GetBGPNeighborsDetail(ctx context.Context, neighborAddress string) (map[string]interface{}, error) {
	return notSupported("get_bgp_neighbors_detail")
}

func (d *Driver) GetLLDPNeighbors(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_lldp_neighbors")
}

func (d *Driver) GetLLDPNeighborsDetail(ctx context.Context, iface string) (map[string]interface{}, error) {
	return notSupported("get_lldp_neighbors_detail")
}

func (d *Driver) GetMACAddressTable(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_mac_address_table")
}

func (d *Driver) GetNetworkInstances(ctx context.Context, name string) (map[string]interface{}, error) {
	return notSupported("get_network_instances")
}

func (d *Driver) GetNTPServers(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_ntp_servers")
}

func (d *Driver) GetNTPPeers(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_ntp_peers")
}

func (d *Driver) GetNTPStats(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_ntp_stats")
}

func (d *Driver) GetOptics(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_optics")
}

func (d *Driver) GetProbesConfig(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_probes_config")
}

func (d *Driver) GetProbesResults(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_probes_results")
}

func (d *Driver) GetRouteTo(ctx context.Context, destination, protocol string) (map[string]interface{}, error) {
	return notSupported("get_route_to")
}

func (d *Driver) GetSNMPInformation(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_snmp_information")
}

func (d *Driver) GetUsers(ctx context.Context) (map[string]interface{}, error) {
	return notSupported("get_users")
}

func (d *Driver) Ping(ctx context.Context, destination string) (map[string]interface{}, error) {
	return notSupported("ping")
}

func (d *Driver) Traceroute(ctx context.Context, destination string) (map[string]interface{}, error) {
	return notSupported("traceroute")
}
