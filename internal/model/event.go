package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// 事件投递状态
const (
	EventStatusPending = "pending"
	EventStatusSuccess = "success"
	EventStatusFailed  = "failed"
)

// EventModel 请求事件 outbox
// 与请求写入在同一事务中落库
type EventModel struct {
	ID         string                      `gorm:"primaryKey;type:varchar(64)"`
	RequestID  string                      `gorm:"type:varchar(64);not null;index"`
	OwnerID    string                      `gorm:"type:varchar(64);not null;default:''"` // 请求创建人,用于实时推送
	Type       string                      `gorm:"type:varchar(32);not null;index"`
	Data       []byte                      `gorm:"not null"` // 序列化后的事件
	Status     string                      `gorm:"type:varchar(32);not null;default:'pending';index"`
	RetryCount int                         `gorm:"type:int;default:0"`
	Delivered  datatypes.JSONSlice[string] // 已成功投递的 Webhook 地址
	CreatedAt  time.Time                   `gorm:"not null;index"`
	UpdatedAt  time.Time                   `gorm:"not null"`
}

// IsDeliveredTo 是否已成功投递到指定地址
func (em *EventModel) IsDeliveredTo(url string) bool {
	for _, delivered := range em.Delivered {
		if delivered == url {
			return true
		}
	}
	return false
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// Validate 验证事件模型
func (em *EventModel) Validate() error {
	if em.ID == "" {
		return errors.New("event ID is required")
	}
	if em.RequestID == "" {
		return errors.New("request ID is required")
	}
	if em.Type == "" {
		return errors.New("event type is required")
	}
	if len(em.Data) == 0 {
		return errors.New("event data is required")
	}
	if em.Status == "" {
		em.Status = EventStatusPending
	}
	return nil
}
