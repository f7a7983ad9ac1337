package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
)

// Recorder 把每次任务变更写成一条结构化审计日志。
// 审计失败绝不影响业务调用, 这里没有 error 返回。
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// logger resolves the zap logger lazily. The recorder is constructed at
// component build time, before the logging component has started, so the
// global logger cannot be captured in NewRecorder.
func (r *Recorder) logger() *zap.Logger {
	if l := logging.UnderlyingZap(); l != nil {
		return l.Named("audit")
	}
	return zap.NewNop()
}

// Record 记录一次操作: 谁(ownerID) 对哪个任务(taskID) 做了什么(action), 结果如何。
func (r *Recorder) Record(ctx context.Context, action, ownerID, taskID string, started time.Time, err error) {
	outcome := "ok"
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("owner_id", ownerID),
		zap.Duration("duration", time.Since(started)),
	}
	if taskID != "" {
		fields = append(fields, zap.String("task_id", taskID))
	}
	if err != nil {
		outcome = "error"
		fields = append(fields, zap.Error(err))
	}
	fields = append(fields, zap.String("outcome", outcome))
	r.logger().Info("task_audit", fields...)
}
