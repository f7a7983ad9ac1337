package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/redis"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskCompleted EventType = "task_completed"
	EventTaskDeleted   EventType = "task_deleted"
)

// TaskEvent 单条任务变更事件, 按 owner 走独立 redis channel。
type TaskEvent struct {
	Type   EventType   `json:"type"`
	TaskID string      `json:"task_id"`
	Task   *model.Task `json:"task,omitempty"` // deleted 事件不带实体
	At     time.Time   `json:"at"`
}

const defaultChannelPrefix = "todo:events:"

// TaskEvents 通过 redis pub/sub 向订阅端广播任务变更。
// 发布是尽力而为: redis 故障只记 warn, 绝不让业务变更失败。
type TaskEvents struct {
	*core.BaseComponent
	RedisComp *redis.RedisComponent `infra:"dep:redis"`
	prefix    string
}

func NewTaskEvents(prefix string) *TaskEvents {
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	return &TaskEvents{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_EVENTS, consts.COMPONENT_LOGGING, consts.COMPONENT_REDIS),
		prefix:        prefix,
	}
}

func (e *TaskEvents) Start(ctx context.Context) error {
	if err := e.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if e.RedisComp == nil {
		return fmt.Errorf("task_events: redis component not injected")
	}
	return nil
}

func (e *TaskEvents) Stop(ctx context.Context) error {
	return e.BaseComponent.Stop(ctx)
}

// Channel 返回某个 owner 的事件 channel 名。
func (e *TaskEvents) Channel(ownerID string) string {
	return e.prefix + ownerID
}

// Publish broadcasts one event on the owner's channel. Failures are logged and
// swallowed so mutations never fail because of the event fanout.
func (e *TaskEvents) Publish(ctx context.Context, ownerID string, ev *TaskEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Warn(ctx, "task event marshal failed",
			zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}
	if err := e.RedisComp.Client().Publish(ctx, e.Channel(ownerID), payload).Err(); err != nil {
		logging.Warn(ctx, "task event publish failed",
			zap.String("channel", e.Channel(ownerID)),
			zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

// Subscribe opens a pub/sub subscription for one owner. The caller owns the
// returned PubSub and must Close it.
func (e *TaskEvents) Subscribe(ctx context.Context, ownerID string) *goredis.PubSub {
	return e.RedisComp.Client().Subscribe(ctx, e.Channel(ownerID))
}
