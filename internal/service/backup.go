package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/internal/database"
	"github.com/sshcollectorpro/fortidriver/internal/metrics"
	"github.com/sshcollectorpro/fortidriver/internal/model"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// BackupRequest 备份请求
type BackupRequest struct {
	Target
	// Retrieve running|startup，默认 running
	Retrieve string `json:"retrieve,omitempty"`
	// StorageBackend local|minio，默认读取配置
	StorageBackend string `json:"storage_backend,omitempty"`
}

// BackupResult 单台设备的备份结果
type BackupResult struct {
	ID         string       `json:"id"`
	Host       string       `json:"host"`
	Hostname   string       `json:"hostname,omitempty"`
	Retrieve   string       `json:"retrieve"`
	Object     StoredObject `json:"object"`
	DurationMS int64        `json:"duration_ms"`
	Timestamp  time.Time    `json:"timestamp"`
}

// BackupService 拉取配置并写入存储
type BackupService struct {
	cfg    *config.Config
	open   Opener
	writer StorageWriter
	now    func() time.Time
}

// NewBackupService 创建备份服务
func NewBackupService(cfg *config.Config, open Opener, writer StorageWriter) *BackupService {
	if writer == nil {
		writer = NewStorageWriter(cfg)
	}
	return &BackupService{cfg: cfg, open: open, writer: writer, now: time.Now}
}

// Backup 备份一台设备的配置
func (s *BackupService) Backup(ctx context.Context, req BackupRequest) (*BackupResult, error) {
	retrieve := strings.ToLower(strings.TrimSpace(req.Retrieve))
	if retrieve == "" {
		retrieve = fortinet.RetrieveRunning
	}
	if retrieve != fortinet.RetrieveRunning && retrieve != fortinet.RetrieveStartup {
		return nil, fmt.Errorf("backup retrieve %q: %w", retrieve, fortinet.ErrInvalidRetrieve)
	}
	backend := strings.ToLower(strings.TrimSpace(req.StorageBackend))
	if backend == "" {
		backend = s.cfg.Backup.StorageBackend
	}

	log := logger.WithFields(logrus.Fields{"host": req.Host, "retrieve": retrieve, "backend": backend})
	start := s.now()

	result, err := s.backup(ctx, req.Target, retrieve, backend, start)
	if err != nil {
		metrics.Backups.WithLabelValues(backend, "failed").Inc()
		log.WithError(err).Warnf("Backup failed")
		return nil, err
	}
	metrics.Backups.WithLabelValues(result.Object.Backend, metrics.ResultOK).Inc()
	log.WithField("uri", result.Object.URI).Infof("Backup stored")
	return result, nil
}

func (s *BackupService) backup(ctx context.Context, target Target, retrieve, backend string, start time.Time) (*BackupResult, error) {
	d, err := s.open(ctx, target)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	snapshot, err := d.GetConfig(ctx, retrieve)
	if err != nil {
		return nil, err
	}
	content := snapshot.Running
	if retrieve == fortinet.RetrieveStartup {
		content = snapshot.Startup
	}

	hostname := configHostname(content)
	obj, err := s.writer.Write(ctx, StorageMeta{
		Host:     target.Host,
		Hostname: hostname,
		Retrieve: retrieve,
		Backend:  backend,
		Time:     start,
	}, content)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{
		ID:         uuid.NewString(),
		Host:       target.Host,
		Hostname:   hostname,
		Retrieve:   retrieve,
		Object:     obj,
		DurationMS: s.now().Sub(start).Milliseconds(),
		Timestamp:  start,
	}

	if database.GetDB() != nil {
		record := &model.BackupRecord{
			ID:          result.ID,
			Host:        target.Host,
			Retrieve:    retrieve,
			Backend:     obj.Backend,
			URI:         obj.URI,
			Size:        obj.Size,
			Checksum:    obj.Checksum,
			ContentType: obj.ContentType,
			Warning:     obj.Warning,
		}
		if err := database.SaveBackup(record); err != nil {
			logger.WithError(err).WithField("host", target.Host).Warnf("Failed to save backup record")
		}
	}
	return result, nil
}

// configHostname 取 config system global 下的 hostname
func configHostname(content string) string {
	inGlobal := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "config system global":
			inGlobal = true
		case inGlobal && trimmed == "end":
			return ""
		case inGlobal && strings.HasPrefix(trimmed, "set hostname "):
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, "set hostname ")), `"`)
		}
	}
	return ""
}
