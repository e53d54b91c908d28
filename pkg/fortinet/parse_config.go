package fortinet

import (
	"fmt"
)

// 取回范围
const (
	RetrieveAll       = "all"
	RetrieveRunning   = "running"
	RetrieveStartup   = "startup"
	RetrieveCandidate = "candidate"
)

// ValidateRetrieve 校验 retrieve 参数
func ValidateRetrieve(retrieve string) error {
	switch retrieve {
	case RetrieveAll, RetrieveRunning, RetrieveStartup, RetrieveCandidate:
		return nil
	default:
		return fmt.Errorf("%q: %w", retrieve, ErrInvalidRetrieve)
	}
}

// BuildConfigSnapshot 由 show 的输出构造配置快照
// 设备不区分运行与启动配置，同一份文本同时作为 running 与 startup；
// candidate 无法获取，始终为空
func BuildConfigSnapshot(show, retrieve string) (ConfigSnapshot, error) {
	if err := ValidateRetrieve(retrieve); err != nil {
		return ConfigSnapshot{}, err
	}
	var snapshot ConfigSnapshot
	switch retrieve {
	case RetrieveAll:
		snapshot.Running = show
		snapshot.Startup = show
	case RetrieveRunning:
		snapshot.Running = show
	case RetrieveStartup:
		snapshot.Startup = show
	}
	return snapshot, nil
}
