package fortinet

// Vendor 设备厂商常量
const Vendor = "Fortinet"

// DefaultInstance BGP 默认路由实例的保留键
const DefaultInstance = "_"

// UnknownUptime 运行时长无法解析时的哨兵值
const UnknownUptime int64 = -1

// Facts 设备基础信息
type Facts struct {
	Vendor        string   `json:"vendor" yaml:"vendor"`
	Model         string   `json:"model" yaml:"model"`
	SerialNumber  string   `json:"serial_number" yaml:"serial_number"`
	OSVersion     string   `json:"os_version" yaml:"os_version"`
	Hostname      string   `json:"hostname" yaml:"hostname"`
	FQDN          string   `json:"fqdn" yaml:"fqdn"`
	Uptime        int64    `json:"uptime" yaml:"uptime"`
	InterfaceList []string `json:"interface_list" yaml:"interface_list"`
}

// ArpEntry ARP 表项
// Age 单位为秒，设备未给出时为 -1
type ArpEntry struct {
	Interface string  `json:"interface" yaml:"interface"`
	MAC       string  `json:"mac" yaml:"mac"`
	IP        string  `json:"ip" yaml:"ip"`
	Age       float64 `json:"age" yaml:"age"`
}

// PrefixInfo 地址的前缀长度
type PrefixInfo struct {
	PrefixLength int `json:"prefix_length" yaml:"prefix_length"`
}

// InterfaceAddresses 接口按地址族分组的地址
type InterfaceAddresses struct {
	IPv4 map[string]PrefixInfo `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IPv6 map[string]PrefixInfo `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
}

// InterfacesIP 接口名 -> 地址
type InterfacesIP map[string]InterfaceAddresses

// PrefixTeardown 前缀超限后的拆除策略
type PrefixTeardown struct {
	Threshold int `json:"threshold" yaml:"threshold"`
	Timeout   int `json:"timeout" yaml:"timeout"`
}

// PrefixLimitEntry 单一地址族的前缀上限
type PrefixLimitEntry struct {
	Limit    int            `json:"limit" yaml:"limit"`
	Teardown PrefixTeardown `json:"teardown" yaml:"teardown"`
}

// PrefixLimit 结构：family -> safi -> 上限
type PrefixLimit map[string]map[string]PrefixLimitEntry

// BGPNeighbor 邻居配置
type BGPNeighbor struct {
	Description          string      `json:"description" yaml:"description"`
	ImportPolicy         string      `json:"import_policy" yaml:"import_policy"`
	ExportPolicy         string      `json:"export_policy" yaml:"export_policy"`
	LocalAddress         string      `json:"local_address" yaml:"local_address"`
	AuthenticationKey    string      `json:"authentication_key" yaml:"authentication_key"`
	NHS                  bool        `json:"nhs" yaml:"nhs"`
	RouteReflectorClient bool        `json:"route_reflector_client" yaml:"route_reflector_client"`
	LocalAS              int64       `json:"local_as" yaml:"local_as"`
	RemoteAS             int64       `json:"remote_as" yaml:"remote_as"`
	MultihopTTL          int         `json:"multihop_ttl" yaml:"multihop_ttl"`
	RemovePrivateAS      bool        `json:"remove_private_as" yaml:"remove_private_as"`
	PrefixLimit          PrefixLimit `json:"prefix_limit" yaml:"prefix_limit"`
}

// BGPGroup 路由实例级配置
type BGPGroup struct {
	Type            string                 `json:"type" yaml:"type"`
	Description     string                 `json:"description" yaml:"description"`
	ApplyGroups     []string               `json:"apply_groups" yaml:"apply_groups"`
	RouterID        string                 `json:"router_id" yaml:"router_id"`
	LocalAS         int64                  `json:"local_as" yaml:"local_as"`
	RemoteAS        int64                  `json:"remote_as" yaml:"remote_as"`
	ImportPolicy    string                 `json:"import_policy" yaml:"import_policy"`
	ExportPolicy    string                 `json:"export_policy" yaml:"export_policy"`
	LocalAddress    string                 `json:"local_address" yaml:"local_address"`
	Multipath       bool                   `json:"multipath" yaml:"multipath"`
	MultihopTTL     int                    `json:"multihop_ttl" yaml:"multihop_ttl"`
	RemovePrivateAS bool                   `json:"remove_private_as" yaml:"remove_private_as"`
	PrefixLimit     PrefixLimit            `json:"prefix_limit" yaml:"prefix_limit"`
	Neighbors       map[string]BGPNeighbor `json:"neighbors" yaml:"neighbors"`
}

// BGPConfig 实例名 -> 配置
type BGPConfig map[string]BGPGroup

// ConfigSnapshot 三份配置文本
type ConfigSnapshot struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Running   string `json:"running" yaml:"running"`
	Startup   string `json:"startup" yaml:"startup"`
}

// AliveStatus 会话存活状态
type AliveStatus struct {
	IsAlive bool `json:"is_alive" yaml:"is_alive"`
}
