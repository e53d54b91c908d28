package fortinet

import (
	"context"

	sshclient "github.com/sshcollectorpro/fortidriver/pkg/ssh"
)

// Session 与设备之间的交互会话
type Session interface {
	// SendCommand 发送一条命令，返回去掉回显与提示符的输出
	SendCommand(ctx context.Context, command string) (string, error)
	// WriteRaw 写入原始字节，不读取输出
	WriteRaw(data []byte) error
	// IsActive 传输层是否仍然可用
	IsActive() bool
	Close() error
}

// Dialer 打开会话
type Dialer func(ctx context.Context, hostname, username, password string, opts Options) (Session, error)

// DialSSH 默认 Dialer，基于 pkg/ssh 的持久 Shell
func DialSSH(ctx context.Context, hostname, username, password string, opts Options) (Session, error) {
	policy := sshclient.HostKeyPolicy{Strict: opts.SSHStrict}
	if opts.SystemHostKeys {
		if path := sshclient.SystemKnownHosts(); path != "" {
			policy.KnownHosts = append(policy.KnownHosts, path)
		}
	}
	if opts.AltHostKeys && opts.AltKeyFile != "" {
		policy.KnownHosts = append(policy.KnownHosts, opts.AltKeyFile)
	}
	hostKeyCallback, err := policy.Callback()
	if err != nil {
		return nil, err
	}

	client := sshclient.NewClient(&sshclient.Config{
		Timeout:         opts.Timeout,
		KeepAlive:       opts.Keepalive,
		DelayFactor:     opts.GlobalDelayFactor,
		HostKeyCallback: hostKeyCallback,
		UseKeys:         opts.UseKeys,
	})
	info := &sshclient.ConnectionInfo{
		Host:     hostname,
		Port:     opts.Port,
		Username: username,
		Password: password,
		KeyFile:  opts.KeyFile,
	}
	if err := client.Connect(ctx, info); err != nil {
		return nil, err
	}
	return client, nil
}
