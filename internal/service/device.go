package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
)

// Target 设备连接信息
type Target struct {
	Host     string `json:"host" yaml:"host" binding:"required"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Username string `json:"username" yaml:"username" binding:"required"`
	Password string `json:"password" yaml:"password"`
}

// Opener 建立到设备的已打开会话，调用方负责 Close
type Opener func(ctx context.Context, target Target) (*fortinet.Driver, error)

// NewOpener 按基础参数打开驱动；Target.Port 非零时覆盖端口
// dial 为 nil 时使用 SSH
func NewOpener(base fortinet.Options, dial fortinet.Dialer) Opener {
	return func(ctx context.Context, target Target) (*fortinet.Driver, error) {
		host := strings.TrimSpace(target.Host)
		if host == "" {
			return nil, fmt.Errorf("target host is required")
		}
		opts := base
		if target.Port > 0 {
			opts.Port = target.Port
		}
		d, err := fortinet.New(host, target.Username, target.Password, opts)
		if err != nil {
			return nil, err
		}
		if dial != nil {
			d.SetDialer(dial)
		}
		if err := d.Open(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}
