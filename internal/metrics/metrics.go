package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace 指标前缀
const Namespace = "fortidriver"

// 命令结果标签
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultTransport = "transport_error"
)

// Registry 独立注册表，不混入默认注册表的指标
var Registry = prometheus.NewRegistry()

var (
	// Commands 下发到设备的命令数
	Commands = newCounterVec("executor", "commands_total", "Commands sent to devices, by result.", "result")

	// Sessions 会话打开结果
	Sessions = newCounterVec("session", "opens_total", "Session open attempts, by result.", "result")

	// Getters 查询调用次数
	Getters = newCounterVec("driver", "getter_calls_total", "Getter invocations, by getter and result.", "getter", "result")

	// GetterDuration 查询耗时
	GetterDuration = newHistogramVec("driver", "getter_duration_seconds", "Getter latency in seconds.", "getter")

	// Backups 配置备份结果
	Backups = newCounterVec("backup", "runs_total", "Configuration backups, by storage and result.", "storage", "result")
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// newCounterVec 创建并注册计数器
func newCounterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	metric := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	Registry.MustRegister(metric)
	return metric
}

func newHistogramVec(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	metric := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	Registry.MustRegister(metric)
	return metric
}

// Handler /metrics 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
