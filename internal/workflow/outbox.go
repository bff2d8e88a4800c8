package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/types"
)

// ChangeKind 请求写入的类型
type ChangeKind string

const (
	ChangeCreated       ChangeKind = "created"
	ChangeUpdated       ChangeKind = "updated"
	ChangeStatusChanged ChangeKind = "status_changed"
)

// Change 一次已通过校验、即将提交的请求写入
type Change struct {
	Kind    ChangeKind
	Request *model.RequestModel
	From    types.RequestStatus
	To      types.RequestStatus
	ActorID string
	Comment string
	At      time.Time
}

// Outbox 请求事件 outbox
// Build 构造的事件与请求在同一事务中落库;Dispatch 只在事务提交后调用
type Outbox interface {
	Build(change Change) (*model.EventModel, error)
	Dispatch(ctx context.Context, event *model.EventModel)
}

// WithOutbox 指定事件 outbox
func WithOutbox(outbox Outbox) Option {
	return func(e *Engine) { e.outbox = outbox }
}

func (e *Engine) buildEvent(change Change) (*model.EventModel, error) {
	if e.outbox == nil {
		return nil, nil
	}
	event, err := e.outbox.Build(change)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s event: %w", change.Kind, err)
	}
	return event, nil
}

func (e *Engine) dispatch(ctx context.Context, event *model.EventModel) {
	if e.outbox != nil && event != nil {
		e.outbox.Dispatch(ctx, event)
	}
}
