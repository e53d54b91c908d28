package fortinet

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sshcollectorpro/fortidriver/internal/metrics"
	"github.com/sshcollectorpro/fortidriver/internal/util"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

const echoLines = 5

// executor 在会话上执行命令并识别设备拒绝
type executor struct {
	session Session
	markers []string
	charset string
	log     *logrus.Entry
}

// run 依次尝试命令变体，返回第一个未被拒绝的输出
// 全部被拒绝时返回最后一个输出和 *CommandError；传输失败返回 *ConnectionClosedError
func (e *executor) run(ctx context.Context, commands ...string) (string, error) {
	var output string
	for _, command := range commands {
		raw, err := e.session.SendCommand(ctx, command)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			metrics.Commands.WithLabelValues(metrics.ResultTransport).Inc()
			e.log.WithError(err).WithField("command", command).Warnf("Transport failed")
			return "", &ConnectionClosedError{Command: command, Err: err}
		}

		output = util.EnsureUTF8(raw, e.charset)
		logger.DebugCommandOutput(e.log, command, output, echoLines)

		if marker, rejected := e.rejected(output); rejected {
			metrics.Commands.WithLabelValues(metrics.ResultRejected).Inc()
			e.log.WithFields(logrus.Fields{
				"command": command,
				"marker":  marker,
			}).Debugf("Command rejected, trying next variant")
			continue
		}
		metrics.Commands.WithLabelValues(metrics.ResultOK).Inc()
		return output, nil
	}
	return output, &CommandError{Commands: commands, Output: output}
}

// rejected 输出是否包含任一错误标志
func (e *executor) rejected(output string) (string, bool) {
	for _, marker := range e.markers {
		if marker != "" && strings.Contains(output, marker) {
			return marker, true
		}
	}
	return "", false
}
