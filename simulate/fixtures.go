package simulate

import (
	"strings"
)

// hostnamePlaceholder 固定输出中的主机名占位
const hostnamePlaceholder = "{{hostname}}"

// defaultCommands 一台 FortiGate-VM64 的典型输出
var defaultCommands = map[string]string{
	"get system status": `Version: FortiGate-VM64 v6.4.5,build1828,210217 (GA)
Virus-DB: 1.00000(2018-04-09 18:07)
Extended DB: 1.00000(2018-04-09 18:07)
IPS-DB: 6.00741(2015-12-01 02:30)
Serial-Number: FGVMEVSIMULATOR0
IPS Malicious URL Database: 1.00001(2015-01-01 01:01)
BIOS version: 04000002
Log hard disk: Available
Hostname: {{hostname}}
Operation Mode: NAT
Current virtual domain: root
Max number of virtual domains: 1
Virtual domains status: 1 in NAT mode, 0 in TP mode
Virtual domain configuration: disable
FIPS-CC mode: disable
Current HA mode: standalone
Branch point: 1828
Release Version Information: GA
FortiOS x86-64: Yes
System time: Thu Oct 15 10:20:30 2026`,

	"get system performance status | grep Uptime": `Uptime: 12 days,  4 hours,  37 minutes`,

	"get system dns | grep domain": `domain              : "lab.example.net"`,

	"get system interface | grep ==": `== [ port1 ]
== [ port2 ]
== [ port3 ]
== [ ssl.root ]`,

	"get system arp": `Address           Age(min)   Hardware Addr      Interface
10.0.0.254        0          00:09:0f:09:00:02 port1
10.0.0.10         3          52:54:00:12:34:56 port1
192.168.10.20     14         52:54:00:ab:cd:ef port2`,

	"diagnose ip address list": `IP=10.0.0.1->10.0.0.1/255.255.255.0 index=3 devname=port1
IP=192.168.10.1->192.168.10.1/255.255.255.0 index=4 devname=port2
IP=127.0.0.1->127.0.0.1/255.0.0.0 index=1 devname=root
IP=10.212.134.200->10.212.134.200/255.255.255.255 index=6 devname=ssl.root`,

	"diagnose ipv6 address list": `dev=3 devname=port1 flag= scope=0 prefix=64 addr=2001:db8:10::1 preferred=4294967295 valid=4294967295 cstamp=5321 tstamp=5321
dev=3 devname=port1 flag=P scope=253 prefix=64 addr=fe80::5054:ff:fe12:3456 preferred=4294967295 valid=4294967295 cstamp=2100 tstamp=2100
dev=1 devname=root flag=P scope=254 prefix=128 addr=::1 preferred=4294967295 valid=4294967295 cstamp=2012 tstamp=2012`,

	"show full-configuration router bgp": `config router bgp
    set as 65001
    set router-id 10.0.0.1
    set keepalive-timer 60
    set holdtime-timer 180
    set ebgp-multipath disable
    set ibgp-multipath enable
    config neighbor
        edit "10.0.0.254"
            set advertisement-interval 30
            set remote-as 65000
            set description "isp-a"
            set route-map-in "ISP-A-IN"
            set route-map-out "ISP-A-OUT"
            set password ENC dGVzdA==
            set maximum-prefix 10000
            set maximum-prefix-threshold 75
            set ebgp-enforce-multihop disable
            set ebgp-multihop-ttl 255
        next
        edit "192.168.10.20"
            set remote-as 65001
            set route-reflector-client enable
            set next-hop-self enable
            set update-source "port2"
        next
    end
    config network
        edit 1
            set prefix 10.0.0.0 255.255.255.0
        next
    end
end`,

	"show": `#config-version=FGVM64-6.4.5-FW-build1828-210217:opmode=0:vdom=0:user=admin
#conf_file_ver=13837102735178513
#buildno=1828
#global_vdom=1
config system global
    set alias "FortiGate-VM64"
    set hostname "{{hostname}}"
    set timezone 04
end
config system interface
    edit "port1"
        set vdom "root"
        set ip 10.0.0.1 255.255.255.0
        set allowaccess ping https ssh
        set type physical
    next
    edit "port2"
        set vdom "root"
        set ip 192.168.10.1 255.255.255.0
        set type physical
    next
end
config system dns
    set primary 10.0.0.53
    set domain "lab.example.net"
end`,
}

// knownVerbs FortiOS 一级命令，其他开头的输入返回 Unknown action
var knownVerbs = map[string]bool{
	"get":      true,
	"show":     true,
	"diagnose": true,
	"execute":  true,
	"config":   true,
}

// rejection 模拟设备拒绝命令时的输出
func rejection(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 || !knownVerbs[strings.ToLower(fields[0])] {
		return "Unknown action 0"
	}
	return "command parse error before '" + fields[len(fields)-1] + "'\nCommand fail. Return code -61"
}
