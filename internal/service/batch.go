package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/internal/database"
	"github.com/sshcollectorpro/fortidriver/internal/model"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// GetterRequest 在多台设备上执行同一组查询
type GetterRequest struct {
	Targets []Target            `json:"targets" binding:"required,min=1,dive"`
	Getters []string            `json:"getters" binding:"required,min=1"`
	Args    fortinet.GetterArgs `json:"args"`
}

// DeviceResult 单台设备的查询结果
// Error 为打开会话失败的原因；单个查询的失败记录在 Errors 中
type DeviceResult struct {
	Host       string                 `json:"host"`
	Results    map[string]interface{} `json:"results"`
	Errors     map[string]string      `json:"errors,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
}

// Success 会话打开且所有查询成功
func (r DeviceResult) Success() bool {
	return r.Error == "" && len(r.Errors) == 0
}

// BatchService 以有限并发在多台设备上执行查询
type BatchService struct {
	cfg  config.BatchConfig
	open Opener
}

// NewBatchService 创建批量查询服务
func NewBatchService(cfg config.BatchConfig, open Opener) *BatchService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &BatchService{cfg: cfg, open: open}
}

// Validate 检查查询名
func (r GetterRequest) Validate() error {
	if len(r.Targets) == 0 {
		return fmt.Errorf("no targets")
	}
	for _, name := range r.Getters {
		if !fortinet.HasGetter(name) {
			return fmt.Errorf("%q: %w", name, fortinet.ErrUnknownGetter)
		}
	}
	return nil
}

// Run 结果顺序与 Targets 一致；单台设备失败不影响其他设备
func (s *BatchService) Run(ctx context.Context, req GetterRequest) ([]DeviceResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	results := make([]DeviceResult, len(req.Targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, target := range req.Targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = s.runDevice(gctx, target, req.Getters, req.Args)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *BatchService) runDevice(ctx context.Context, target Target, getters []string, args fortinet.GetterArgs) DeviceResult {
	start := time.Now()
	result := DeviceResult{Host: target.Host, Results: make(map[string]interface{}, len(getters))}
	log := logger.WithFields(logrus.Fields{"host": target.Host, "getters": len(getters)})

	if s.cfg.DeviceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DeviceTimeout)
		defer cancel()
	}

	d, err := s.open(ctx, target)
	if err != nil {
		log.WithError(err).Warnf("Batch: open failed")
		result.Error = err.Error()
		result.DurationMS = time.Since(start).Milliseconds()
		return result
	}
	defer d.Close()

	for _, name := range getters {
		value, err := d.Get(ctx, name, args)
		if err != nil {
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Errors[name] = err.Error()
			continue
		}
		result.Results[name] = value
		if facts, ok := value.(fortinet.Facts); ok {
			recordFacts(target.Host, facts, start)
		}
	}

	result.DurationMS = time.Since(start).Milliseconds()
	log.WithField("duration_ms", result.DurationMS).Debugf("Batch: device done")
	return result
}

// recordFacts 数据库可用时保存 facts 历史
func recordFacts(host string, facts fortinet.Facts, at time.Time) {
	if database.GetDB() == nil {
		return
	}
	rec := model.NewFactsRecord(host, facts, at)
	if err := database.SaveFacts(&rec); err != nil {
		logger.WithError(err).WithField("host", host).Warnf("Failed to save facts record")
	}
}
