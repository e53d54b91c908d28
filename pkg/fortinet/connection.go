package fortinet

import (
	"context"
	"errors"
	"fmt"

	"github.com/sshcollectorpro/fortidriver/internal/metrics"
)

// 存活探测失败原因
var (
	errNoSession         = errors.New("no session")
	errKeepaliveWrite    = errors.New("keepalive write failed")
	errTransportInactive = errors.New("transport inactive")
)

// keepaliveByte 探测时写入的空字节，FortiOS 会忽略
var keepaliveByte = []byte{0}

// livenessProbe 探测结果，Alive 为 false 时 Reason 说明原因
type livenessProbe struct {
	Alive  bool
	Reason error
}

// Open 建立会话
func (d *Driver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		return ErrAlreadyOpen
	}

	d.logEntry().WithField("port", d.opts.Port).Debugf("Opening session")
	session, err := d.dial(ctx, d.hostname, d.username, d.password, d.opts)
	if err != nil {
		metrics.Sessions.WithLabelValues("failed").Inc()
		d.logEntry().WithError(err).Warnf("Failed to open session")
		return &ConnectionError{Host: d.hostname, Err: err}
	}
	if session == nil {
		metrics.Sessions.WithLabelValues("failed").Inc()
		return &ConnectionError{Host: d.hostname, Err: errNoSession}
	}

	metrics.Sessions.WithLabelValues("opened").Inc()
	d.session = session
	d.exec = &executor{
		session: session,
		markers: d.opts.ErrorMarkers,
		charset: d.opts.OutputCharset,
		log:     d.logEntry(),
	}
	d.logEntry().Infof("Session opened")
	return nil
}

// Close 关闭会话；未打开时返回 ErrNotConnected
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return ErrNotConnected
	}
	err := d.session.Close()
	d.session = nil
	d.exec = nil
	if err != nil {
		return fmt.Errorf("close session to %s: %w", d.hostname, err)
	}
	d.logEntry().Infof("Session closed")
	return nil
}

// IsAlive 会话是否可用，不返回错误
func (d *Driver) IsAlive() AliveStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.probe()
	if !p.Alive {
		d.logEntry().WithField("reason", p.Reason).Debugf("Session not alive")
	}
	return AliveStatus{IsAlive: p.Alive}
}

// probe 调用方持有锁
// 会话实现中的 panic 同样视为不存活
func (d *Driver) probe() (result livenessProbe) {
	defer func() {
		if r := recover(); r != nil {
			result = livenessProbe{Reason: fmt.Errorf("%w: %v", errKeepaliveWrite, r)}
		}
	}()

	if d.session == nil {
		return livenessProbe{Reason: errNoSession}
	}
	if err := d.session.WriteRaw(keepaliveByte); err != nil {
		return livenessProbe{Reason: fmt.Errorf("%w: %v", errKeepaliveWrite, err)}
	}
	if !d.session.IsActive() {
		return livenessProbe{Reason: errTransportInactive}
	}
	return livenessProbe{Alive: true}
}
