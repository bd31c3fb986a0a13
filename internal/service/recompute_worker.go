package service

import (
	"context"
	"sync"

	"studybuddy_backend/pkg/logger"

	"go.uber.org/zap"
)

// RecomputeWorker 把连续天数重算和徽章评估从写入路径上摘下来，
// 放在单个后台 goroutine 里串行处理，避免同一用户并发重算
type RecomputeWorker struct {
	Streaks *StreakService
	Badges  *BadgeService

	queue chan string
	wg    sync.WaitGroup
}

func NewRecomputeWorker(streaks *StreakService, badges *BadgeService, queueSize int) *RecomputeWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &RecomputeWorker{
		Streaks: streaks,
		Badges:  badges,
		queue:   make(chan string, queueSize),
	}
}

// Enqueue 非阻塞入队。队列满时丢弃本次请求，下一次活动写入会再触发，
// 最终状态由全量重算保证
func (w *RecomputeWorker) Enqueue(userKey string) {
	select {
	case w.queue <- userKey:
	default:
		logger.Log.Warn("recompute queue full, dropping request",
			zap.String("userKey", userKey))
	}
}

// Run 消费队列直到 ctx 取消，取消后清空积压再退出
func (w *RecomputeWorker) Run(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case userKey := <-w.queue:
				w.process(userKey)
			case <-ctx.Done():
				for {
					select {
					case userKey := <-w.queue:
						w.process(userKey)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait 等消费 goroutine 退出，优雅关停时调用
func (w *RecomputeWorker) Wait() {
	w.wg.Wait()
}

func (w *RecomputeWorker) process(userKey string) {
	if _, err := w.Streaks.Recompute(userKey); err != nil {
		logger.Log.Error("background streak recompute failed",
			zap.String("userKey", userKey),
			zap.Error(err))
	}

	result, err := w.Badges.Evaluate(userKey)
	if err != nil {
		logger.Log.Error("background badge evaluation failed",
			zap.String("userKey", userKey),
			zap.Error(err))
		return
	}
	if len(result.Failures) > 0 {
		logger.Log.Warn("badge evaluation completed with failures",
			zap.String("userKey", userKey),
			zap.Int("failures", len(result.Failures)))
	}
}
