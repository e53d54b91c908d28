package fortinet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sshcollectorpro/fortidriver/internal/metrics"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// 设备命令
const (
	cmdSystemStatus    = "get system status"
	cmdUptime          = "get system performance status | grep Uptime"
	cmdDNSDomain       = "get system dns | grep domain"
	cmdInterfaceNames  = "get system interface | grep =="
	cmdARP             = "get system arp"
	cmdBGPConfig       = "show full-configuration router bgp"
	cmdShow            = "show"
	cmdIPv4AddressList = "diagnose ip address list"
	cmdIPv6AddressList = "diagnose ipv6 address list"
)

// Driver FortiGate 驱动
// 一个 Driver 独占一个会话，所有查询经互斥锁串行执行
type Driver struct {
	hostname string
	username string
	password string
	opts     Options
	dial     Dialer

	mu      sync.Mutex
	session Session
	exec    *executor
}

// New 创建驱动，opts 零值字段取默认值
func New(hostname, username, password string, opts Options) (*Driver, error) {
	if hostname == "" {
		return nil, errors.New("hostname is required")
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		hostname: hostname,
		username: username,
		password: password,
		opts:     opts,
		dial:     DialSSH,
	}, nil
}

// SetDialer 替换会话拨号实现，须在 Open 之前调用
func (d *Driver) SetDialer(dial Dialer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dial != nil {
		d.dial = dial
	}
}

// Hostname 设备地址
func (d *Driver) Hostname() string { return d.hostname }

// Options 生效的会话参数
func (d *Driver) Options() Options { return d.opts }

func (d *Driver) logEntry() *logrus.Entry {
	return logger.WithField("host", d.hostname)
}

// call 持锁检查会话状态后执行查询，并记录指标
func call[T any](d *Driver, getter string, fn func(ex *executor) (T, error)) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if d.exec == nil {
		metrics.Getters.WithLabelValues(getter, "not_connected").Inc()
		return zero, ErrNotConnected
	}

	start := time.Now()
	result, err := fn(d.exec)
	metrics.GetterDuration.WithLabelValues(getter).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Getters.WithLabelValues(getter, "error").Inc()
		return zero, fmt.Errorf("%s: %w", getter, err)
	}
	metrics.Getters.WithLabelValues(getter, "ok").Inc()
	return result, nil
}

// optional 可缺省的查询，设备拒绝时返回空串
func (d *Driver) optional(ctx context.Context, ex *executor, command string) (string, error) {
	out, err := ex.run(ctx, command)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		d.logEntry().WithField("command", command).Debugf("Optional command rejected, using defaults")
		return "", nil
	}
	return out, err
}

// GetFacts 设备基础信息
// 仅 get system status 必须成功，其余查询被拒绝时使用默认值
func (d *Driver) GetFacts(ctx context.Context) (Facts, error) {
	return call(d, "get_facts", func(ex *executor) (Facts, error) {
		status, err := ex.run(ctx, cmdSystemStatus)
		if err != nil {
			return Facts{}, err
		}
		var extras [3]string
		for i, command := range []string{cmdUptime, cmdDNSDomain, cmdInterfaceNames} {
			if extras[i], err = d.optional(ctx, ex, command); err != nil {
				return Facts{}, err
			}
		}
		return ParseFacts(status, extras[0], extras[1], extras[2]), nil
	})
}

// GetARPTable ARP 表
func (d *Driver) GetARPTable(ctx context.Context) ([]ArpEntry, error) {
	return call(d, "get_arp_table", func(ex *executor) ([]ArpEntry, error) {
		out, err := ex.run(ctx, cmdARP)
		if err != nil {
			return nil, err
		}
		return ParseARPTable(out), nil
	})
}

// GetBGPConfig BGP 配置
// group 非默认实例时直接返回空结果，不访问设备
func (d *Driver) GetBGPConfig(ctx context.Context, group, neighbor string) (BGPConfig, error) {
	return call(d, "get_bgp_config", func(ex *executor) (BGPConfig, error) {
		if group != "" && group != DefaultInstance {
			return make(BGPConfig), nil
		}
		out, err := ex.run(ctx, cmdBGPConfig)
		if err != nil {
			return nil, err
		}
		return ParseBGPConfig(out, group, neighbor)
	})
}

// GetConfig 配置快照，retrieve 取 all、running、startup、candidate
func (d *Driver) GetConfig(ctx context.Context, retrieve string) (ConfigSnapshot, error) {
	if retrieve == "" {
		retrieve = RetrieveAll
	}
	return call(d, "get_config", func(ex *executor) (ConfigSnapshot, error) {
		if err := ValidateRetrieve(retrieve); err != nil {
			return ConfigSnapshot{}, err
		}
		if retrieve == RetrieveCandidate {
			return BuildConfigSnapshot("", retrieve)
		}
		out, err := ex.run(ctx, cmdShow)
		if err != nil {
			return ConfigSnapshot{}, err
		}
		return BuildConfigSnapshot(out, retrieve)
	})
}

// GetInterfacesIP 接口地址
// 未启用 IPv6 的设备拒绝 ipv6 查询时只返回 IPv4
func (d *Driver) GetInterfacesIP(ctx context.Context) (InterfacesIP, error) {
	return call(d, "get_interfaces_ip", func(ex *executor) (InterfacesIP, error) {
		ipv4, err := ex.run(ctx, cmdIPv4AddressList)
		if err != nil {
			return nil, err
		}
		ipv6, err := d.optional(ctx, ex, cmdIPv6AddressList)
		if err != nil {
			return nil, err
		}
		return ParseInterfacesIP(ipv4, ipv6), nil
	})
}

// CLI 执行任意命令，返回命令 -> 输出
// 被设备拒绝的命令同样返回其输出；传输失败时中止
func (d *Driver) CLI(ctx context.Context, commands []string) (map[string]string, error) {
	return call(d, "cli", func(ex *executor) (map[string]string, error) {
		result := make(map[string]string, len(commands))
		for _, command := range commands {
			out, err := ex.run(ctx, command)
			var cmdErr *CommandError
			if err != nil && !errors.As(err, &cmdErr) {
				return nil, err
			}
			result[command] = out
		}
		return result, nil
	})
}
