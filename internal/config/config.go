package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// EnvPrefix 环境变量前缀，例如 FORTIDRIVER_SSH_PORT
const EnvPrefix = "FORTIDRIVER"

// 存储后端
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	SSH      fortinet.Options `mapstructure:"ssh"`
	Log      logger.Config    `mapstructure:"log"`
	Database DatabaseConfig   `mapstructure:"database"`
	Storage  StorageConfig    `mapstructure:"storage"`
	Backup   BackupConfig     `mapstructure:"backup"`
	Batch    BatchConfig      `mapstructure:"batch"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	SimulateEnable bool          `mapstructure:"simulate_enable"`
	SimulateConfig string        `mapstructure:"simulate_config"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig SQLite配置
type SQLiteConfig struct {
	Path            string        `mapstructure:"path"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// LogLevel gorm 日志级别：silent、error、warn、info
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig 备份存储配置
type StorageConfig struct {
	Minio MinioConfig `mapstructure:"minio"`
}

// MinioConfig 对象存储配置
type MinioConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

// Enabled host、port、bucket 均已配置
func (m MinioConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != "" && m.Port > 0 && strings.TrimSpace(m.Bucket) != ""
}

// Endpoint host:port
func (m MinioConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// BackupConfig 配置备份
type BackupConfig struct {
	// StorageBackend 默认存储后端：local | minio
	StorageBackend string            `mapstructure:"storage_backend"`
	Prefix         string            `mapstructure:"prefix"`
	Local          LocalBackupConfig `mapstructure:"local"`
}

// LocalBackupConfig 本地存储配置
type LocalBackupConfig struct {
	BaseDir        string `mapstructure:"base_dir"`
	MkdirIfMissing bool   `mapstructure:"mkdir_if_missing"`
}

// BatchConfig 多设备并发执行
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// DeviceTimeout 单台设备全部查询的时间上限，0 为不限制
	DeviceTimeout time.Duration `mapstructure:"device_timeout"`
}

var globalConfig *Config

// Load 加载配置文件
// configPath 为空时在 ./configs 等目录查找 config.yaml；找不到文件时仅使用默认值与环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Storage.Minio.AccessKey = expandEnv(config.Storage.Minio.AccessKey)
	config.Storage.Minio.SecretKey = expandEnv(config.Storage.Minio.SecretKey)
	config.Backup.StorageBackend = strings.ToLower(strings.TrimSpace(config.Backup.StorageBackend))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 18080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 300*time.Second)
	v.SetDefault("server.simulate_enable", false)
	v.SetDefault("server.simulate_config", "simulate/simulate.yaml")

	d := fortinet.DefaultOptions()
	v.SetDefault("ssh.transport", d.Transport)
	v.SetDefault("ssh.port", d.Port)
	v.SetDefault("ssh.timeout", d.Timeout)
	v.SetDefault("ssh.keepalive", d.Keepalive)
	v.SetDefault("ssh.global_delay_factor", d.GlobalDelayFactor)
	v.SetDefault("ssh.use_keys", false)
	v.SetDefault("ssh.key_file", "")
	v.SetDefault("ssh.ssh_strict", false)
	v.SetDefault("ssh.system_host_keys", false)
	v.SetDefault("ssh.alt_host_keys", false)
	v.SetDefault("ssh.alt_key_file", "")
	v.SetDefault("ssh.error_markers", d.ErrorMarkers)
	v.SetDefault("ssh.output_charset", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "./logs/fortidriver.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.sqlite.path", "./data/fortidriver.db")
	v.SetDefault("database.sqlite.conn_max_lifetime", time.Hour)
	v.SetDefault("database.sqlite.log_level", "warn")

	v.SetDefault("storage.minio.host", "")
	v.SetDefault("storage.minio.port", 9000)
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "")
	v.SetDefault("storage.minio.secure", false)

	v.SetDefault("backup.storage_backend", BackendLocal)
	v.SetDefault("backup.prefix", "configs")
	v.SetDefault("backup.local.base_dir", "./data/backups")
	v.SetDefault("backup.local.mkdir_if_missing", true)

	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("batch.device_timeout", 0)
}

// Validate 校验跨字段约束
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if err := c.SSH.WithDefaults().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ssh: %w", err))
	}
	switch c.Backup.StorageBackend {
	case BackendLocal, BackendMinio:
	default:
		errs = append(errs, fmt.Errorf("backup.storage_backend %q must be %s or %s", c.Backup.StorageBackend, BackendLocal, BackendMinio))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("batch.concurrency must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	return globalConfig
}

// DriverOptions 转换为驱动参数
func (c *Config) DriverOptions() fortinet.Options {
	return c.SSH.WithDefaults()
}

// GetServerAddr 获取服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// expandEnv 替换形如 ${VAR} 的整值
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(strings.TrimSuffix(strings.TrimPrefix(s, "${"), "}"))
	}
	return s
}
