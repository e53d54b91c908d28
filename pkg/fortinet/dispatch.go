package fortinet

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownGetter 未注册的查询名
var ErrUnknownGetter = errors.New("unknown getter")

// GetterArgs 按名称调用查询时的参数，各查询只读取自己需要的字段
type GetterArgs struct {
	Group       string   `json:"group,omitempty" yaml:"group,omitempty"`
	Neighbor    string   `json:"neighbor,omitempty" yaml:"neighbor,omitempty"`
	Retrieve    string   `json:"retrieve,omitempty" yaml:"retrieve,omitempty"`
	Destination string   `json:"destination,omitempty" yaml:"destination,omitempty"`
	Interface   string   `json:"interface,omitempty" yaml:"interface,omitempty"`
	Commands    []string `json:"commands,omitempty" yaml:"commands,omitempty"`
}

type getterFunc func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error)

// getters 名称 -> 查询
var getters = map[string]getterFunc{
	"is_alive": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.IsAlive(), nil
	},
	"get_facts": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetFacts(ctx)
	},
	"get_arp_table": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetARPTable(ctx)
	},
	"get_bgp_config": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetBGPConfig(ctx, args.Group, args.Neighbor)
	},
	"get_config": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetConfig(ctx, args.Retrieve)
	},
	"get_interfaces_ip": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetInterfacesIP(ctx)
	},
	"cli": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.CLI(ctx, args.Commands)
	},
	"get_environment": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetEnvironment(ctx)
	},
	"get_bgp_neighbors": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetBGPNeighbors(ctx)
	},
	"get_bgp_neighbors_detail": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetBGPNeighborsDetail(ctx, args.Neighbor)
	},
	"get_lldp_neighbors": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetLLDPNeighbors(ctx)
	},
	"get_lldp_neighbors_detail": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetLLDPNeighborsDetail(ctx, args.Interface)
	},
	"get_mac_address_table": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetMACAddressTable(ctx)
	},
	"get_network_instances": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetNetworkInstances(ctx, args.Group)
	},
	"get_ntp_servers": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetNTPServers(ctx)
	},
	"get_ntp_peers": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetNTPPeers(ctx)
	},
	"get_ntp_stats": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetNTPStats(ctx)
	},
	"get_optics": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetOptics(ctx)
	},
	"get_probes_config": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetProbesConfig(ctx)
	},
	"get_probes_results": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetProbesResults(ctx)
	},
	"get_route_to": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetRouteTo(ctx, args.Destination, "")
	},
	"get_snmp_information": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetSNMPInformation(ctx)
	},
	"get_users": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.GetUsers(ctx)
	},
	"ping": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.Ping(ctx, args.Destination)
	},
	"traceroute": func(ctx context.Context, d *Driver, args GetterArgs) (interface{}, error) {
		return d.Traceroute(ctx, args.Destination)
	},
}

// GetterNames 已注册的查询名，按字母排序
func GetterNames() []string {
	names := make([]string, 0, len(getters))
	for name := range getters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasGetter 名称是否已注册
func HasGetter(name string) bool {
	_, ok := getters[name]
	return ok
}

// Get 按名称执行查询
func (d *Driver) Get(ctx context.Context, name string, args GetterArgs) (interface{}, error) {
	fn, ok := getters[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownGetter)
	}
	return fn(ctx, d, args)
}
