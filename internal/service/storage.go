package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

const defaultContentType = "text/plain; charset=utf-8"

// StorageWriter 抽象存储写入器
type StorageWriter interface {
	Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error)
}

// StorageMeta 写入元数据
type StorageMeta struct {
	Host     string
	Hostname string // 设备主机名，为空时用 Host 作为目录名
	Retrieve string // running|startup，作为文件名
	Backend  string // local|minio
	Time     time.Time
}

// StoredObject 存储的对象信息
type StoredObject struct {
	URI         string `json:"uri"`
	Backend     string `json:"backend"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"`
	ContentType string `json:"content_type"`
	// Warning 回退到本地存储时的原因
	Warning string `json:"warning,omitempty"`
}

// relativePath prefix/<device>/<YYYYMMDD_HHMMSS>/<retrieve>.conf
func relativePath(prefix string, meta StorageMeta) []string {
	parts := []string{}
	if p := strings.TrimSpace(prefix); p != "" {
		parts = append(parts, p)
	}
	label := strings.TrimSpace(meta.Hostname)
	if label == "" {
		label = meta.Host
	}
	ts := meta.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	name := slug(meta.Retrieve)
	if !strings.Contains(name, ".") {
		name += ".conf"
	}
	return append(parts, slug(label), ts.Format("20060102_150405"), name)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// NewStorageWriter 根据配置创建写入器（委派到本地或 MinIO）
func NewStorageWriter(cfg *config.Config) StorageWriter {
	return &DelegatingStorageWriter{
		local: &LocalStorageWriter{cfg: cfg.Backup},
		minio: initMinioWriter(cfg),
	}
}

// DelegatingStorageWriter 按后端路由写入，MinIO 不可用时回退到本地
type DelegatingStorageWriter struct {
	local *LocalStorageWriter
	minio *MinioStorageWriter
}

func (w *DelegatingStorageWriter) Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error) {
	if strings.ToLower(strings.TrimSpace(meta.Backend)) != config.BackendMinio {
		return w.local.Write(ctx, meta, content)
	}

	reason := "minio client not initialized"
	if w.minio != nil {
		obj, err := w.minio.Write(ctx, meta, content)
		if err == nil {
			return obj, nil
		}
		reason = err.Error()
	}

	logger.WithField("host", meta.Host).WithField("reason", reason).Warnf("MinIO write unavailable; falling back to local")
	obj, err := w.local.Write(ctx, meta, content)
	if err != nil {
		return StoredObject{}, fmt.Errorf("%s; local fallback failed: %w", reason, err)
	}
	obj.Warning = reason
	return obj, nil
}

// LocalStorageWriter 本地文件写入
type LocalStorageWriter struct {
	cfg config.BackupConfig
}

func (w *LocalStorageWriter) Write(_ context.Context, meta StorageMeta, content string) (StoredObject, error) {
	baseDir := strings.TrimSpace(w.cfg.Local.BaseDir)
	if baseDir == "" {
		baseDir = "./data/backups"
	}

	parts := append([]string{baseDir}, relativePath(w.cfg.Prefix, meta)...)
	fullPath := filepath.Join(parts...)

	if w.cfg.Local.MkdirIfMissing {
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return StoredObject{}, fmt.Errorf("failed to create dir: %w", err)
		}
	}

	data := []byte(content)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return StoredObject{}, fmt.Errorf("failed to write file: %w", err)
	}

	return StoredObject{
		URI:         "file://" + fullPath,
		Backend:     config.BackendLocal,
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: defaultContentType,
	}, nil
}

// MinioStorageWriter MinIO 对象存储写入
type MinioStorageWriter struct {
	cfg           config.MinioConfig
	prefix        string
	client        *minio.Client
	bucketEnsured bool
}

// initMinioWriter 未配置 MinIO 时返回 nil
func initMinioWriter(cfg *config.Config) *MinioStorageWriter {
	mc := cfg.Storage.Minio
	if !mc.Enabled() {
		return nil
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   16,
	}

	client, err := minio.New(mc.Endpoint(), &minio.Options{
		Creds:     credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure:    mc.Secure,
		Transport: transport,
	})
	if err != nil {
		logger.WithError(err).Errorf("MinIO client initialization failed")
		return nil
	}
	return &MinioStorageWriter{cfg: mc, prefix: cfg.Backup.Prefix, client: client}
}

// Write 将内容写入 MinIO
func (w *MinioStorageWriter) Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error) {
	bucket := strings.TrimSpace(w.cfg.Bucket)
	objectName := path.Join(relativePath(w.prefix, meta)...)
	data := []byte(content)

	if err := w.fastConnectivityCheck(ctx); err != nil {
		return StoredObject{}, fmt.Errorf("minio connectivity failed to %s: %w", w.cfg.Endpoint(), err)
	}
	if !w.bucketEnsured {
		if err := w.ensureBucket(ctx, bucket, 2); err != nil {
			return StoredObject{}, fmt.Errorf("minio ensure bucket failed: %w", err)
		}
		w.bucketEnsured = true
	}

	// 指数退避重试
	var lastErr error
	for _, wait := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		attemptCtx, cancel := attemptContext(ctx, 10*time.Second)
		_, err := w.client.PutObject(attemptCtx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: defaultContentType})
		cancel()
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return StoredObject{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	if lastErr != nil {
		return StoredObject{}, fmt.Errorf("minio put object failed after retries: %w", lastErr)
	}

	return StoredObject{
		URI:         "minio://" + path.Join(bucket, objectName),
		Backend:     config.BackendMinio,
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: defaultContentType,
	}, nil
}

// fastConnectivityCheck TCP 直连探测
func (w *MinioStorageWriter) fastConnectivityCheck(parent context.Context) error {
	d := &net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(parent, "tcp", w.cfg.Endpoint())
	if err != nil {
		return err
	}
	return conn.Close()
}

// ensureBucket 校验并创建 bucket
func (w *MinioStorageWriter) ensureBucket(parent context.Context, bucket string, retries int) error {
	var lastErr error
	for i := 0; i <= retries; i++ {
		ctx, cancel := attemptContext(parent, 10*time.Second)
		exists, err := w.client.BucketExists(ctx, bucket)
		if err == nil && !exists {
			err = w.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		}
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return lastErr
}

// attemptContext 限时上下文，不超过父上下文的剩余时间
func attemptContext(parent context.Context, prefer time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := parent.Deadline(); ok {
		if remain := time.Until(deadline); remain < prefer {
			return context.WithCancel(parent)
		}
	}
	return context.WithTimeout(parent, prefer)
}

var slugRe = regexp.MustCompile(`[^a-z0-9._-]+`)

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_").Replace(s)
	s = strings.Trim(slugRe.ReplaceAllString(s, ""), ".")
	if s == "" {
		s = "unknown"
	}
	return s
}
