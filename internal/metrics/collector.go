package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/mautops/request-gin/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatusCounter 按状态统计请求数
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[types.RequestStatus]int64, error)
}

// Collector 指标收集器
// 定期刷新数据库连接池与请求状态分布两类 gauge
type Collector struct {
	db       *gorm.DB
	counter  StatusCounter
	interval time.Duration
	logger   *logrus.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  sync.Once
	running  bool
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, counter StatusCounter, interval time.Duration, logger *logrus.Logger) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		counter:  counter,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	c.started.Do(func() {
		c.running = true
		go c.collect()
	})
}

// Stop 停止指标收集器
// 未启动时直接返回
func (c *Collector) Stop() {
	c.cancel()
	c.started.Do(func() {})
	if c.running {
		<-c.done
	}
}

// CollectOnce 立即收集一次
func (c *Collector) CollectOnce(ctx context.Context) {
	if err := UpdateDatabaseConnections(c.db); err != nil {
		c.logger.WithError(err).Debug("failed to collect database metrics")
	}
	if c.counter == nil {
		return
	}
	counts, err := c.counter.CountByStatus(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("failed to collect request status metrics")
		return
	}
	UpdateRequestsByStatus(counts)
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	c.CollectOnce(c.ctx)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce(c.ctx)
		}
	}
}
