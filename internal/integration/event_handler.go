package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
)

// 请求事件类型
const (
	EventRequestCreated       = "request.created"
	EventRequestUpdated       = "request.updated"
	EventRequestStatusChanged = "request.status_changed"
)

// RequestEvent 请求事件
type RequestEvent struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	RequestID  string              `json:"requestId"`
	OwnerID    string              `json:"ownerId"`
	ActorID    string              `json:"actorId"`
	From       types.RequestStatus `json:"from,omitempty"`
	To         types.RequestStatus `json:"to,omitempty"`
	Comment    string              `json:"comment,omitempty"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// Notifier 实时推送接口,由 websocket.Hub 实现
type Notifier interface {
	Publish(ownerID string, message []byte) int
}

// EventHandler 基于 events 表的事件 outbox
// 事件由仓储与请求在同一事务中落库;提交后推送给在线客户端,再由 worker 异步投递到 Webhook
type EventHandler struct {
	eventRepo  repository.EventRepository
	notifier   Notifier
	webhooks   []string
	httpClient *http.Client
	queue      chan *model.EventModel
	workers    int
	maxRetries int
	backoff    time.Duration
	logger     *logrus.Logger
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewEventHandler 创建事件处理器
func NewEventHandler(eventRepo repository.EventRepository, notifier Notifier, cfg config.WebhookConfig, logger *logrus.Logger) *EventHandler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &EventHandler{
		eventRepo:  eventRepo,
		notifier:   notifier,
		webhooks:   cfg.URLs,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		queue:      make(chan *model.EventModel, 1000),
		workers:    workers,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// SetBackoff 设置重试初始间隔
func (h *EventHandler) SetBackoff(d time.Duration) {
	h.backoff = d
}

// Start 启动 worker,并把上次未投递完的事件重新入队
func (h *EventHandler) Start(ctx context.Context) {
	for i := 0; i < h.workers; i++ {
		h.wg.Add(1)
		go h.worker()
	}

	if len(h.webhooks) == 0 {
		return
	}
	pending, err := h.eventRepo.FindPending(ctx, cap(h.queue))
	if err != nil {
		h.logger.WithError(err).Warn("failed to load pending events")
		return
	}
	for _, em := range pending {
		h.enqueue(em)
	}
}

// EventType 写入类型对应的事件类型
func EventType(kind workflow.ChangeKind) string {
	switch kind {
	case workflow.ChangeCreated:
		return EventRequestCreated
	case workflow.ChangeStatusChanged:
		return EventRequestStatusChanged
	}
	return EventRequestUpdated
}

// Build 为一次请求写入构造事件,由仓储在同一事务内落库
func (h *EventHandler) Build(change workflow.Change) (*model.EventModel, error) {
	if change.Request == nil {
		return nil, fmt.Errorf("change has no request")
	}

	evt := RequestEvent{
		ID:         uuid.New().String(),
		Type:       EventType(change.Kind),
		RequestID:  change.Request.ID,
		OwnerID:    change.Request.UserID,
		ActorID:    change.ActorID,
		Comment:    change.Comment,
		OccurredAt: change.At.UTC(),
	}
	switch change.Kind {
	case workflow.ChangeCreated:
		evt.To = change.To
	case workflow.ChangeStatusChanged:
		evt.From, evt.To = change.From, change.To
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	status := model.EventStatusPending
	if len(h.webhooks) == 0 {
		status = model.EventStatusSuccess
	}
	return &model.EventModel{
		ID:        evt.ID,
		RequestID: evt.RequestID,
		OwnerID:   evt.OwnerID,
		Type:      evt.Type,
		Data:      data,
		Status:    status,
		CreatedAt: evt.OccurredAt,
		UpdatedAt: evt.OccurredAt,
	}, nil
}

// Dispatch 在事件落库后推送给在线客户端,并把待投递的事件交给 worker
func (h *EventHandler) Dispatch(ctx context.Context, em *model.EventModel) {
	if h.notifier != nil {
		h.notifier.Publish(em.OwnerID, em.Data)
	}
	if em.Status == model.EventStatusPending {
		h.enqueue(em)
	}
}

// enqueue 入队,队列满时事件保持 pending,下次启动时重新投递
func (h *EventHandler) enqueue(em *model.EventModel) {
	select {
	case h.queue <- em:
	default:
		h.logger.WithFields(logrus.Fields{
			"event_id":   em.ID,
			"request_id": em.RequestID,
			"type":       em.Type,
		}).Warn("event queue full, delivery deferred")
	}
}

// worker 事件投递 worker
func (h *EventHandler) worker() {
	defer h.wg.Done()
	for {
		select {
		case em := <-h.queue:
			h.deliver(em)
		case <-h.stop:
			return
		}
	}
}

// deliver 投递到所有 Webhook,失败时指数退避重试
// 已成功的地址记录在事件上,重试与重启后的补投只发送给尚未成功的地址
func (h *EventHandler) deliver(em *model.EventModel) {
	ctx := context.Background()
	backoff := h.backoff

	for i := 0; i < h.maxRetries; i++ {
		failed := 0
		for _, url := range h.webhooks {
			if em.IsDeliveredTo(url) {
				continue
			}
			if err := h.send(ctx, url, em.Data); err != nil {
				failed++
				h.logger.WithFields(logrus.Fields{
					"event_id": em.ID,
					"url":      url,
					"attempt":  i + 1,
				}).WithError(err).Warn("webhook delivery failed")
				continue
			}
			em.Delivered = append(em.Delivered, url)
		}

		if failed == 0 {
			h.markStatus(ctx, em, model.EventStatusSuccess)
			return
		}

		em.RetryCount++
		h.markStatus(ctx, em, model.EventStatusPending)

		if i < h.maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-h.stop:
				return
			}
		}
	}

	h.markStatus(ctx, em, model.EventStatusFailed)
}

func (h *EventHandler) markStatus(ctx context.Context, em *model.EventModel, status string) {
	em.Status = status
	em.UpdatedAt = time.Now()
	if err := h.eventRepo.Save(ctx, em); err != nil {
		h.logger.WithError(err).WithField("event_id", em.ID).Error("failed to update event status")
	}
}

// send 发送单个 Webhook 请求
func (h *EventHandler) send(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}
	return nil
}

// Stop 停止事件处理器,等待正在投递的 worker 退出
func (h *EventHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	h.wg.Wait()
}
