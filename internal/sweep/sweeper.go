package sweep

import (
	"context"
	"time"

	repo "app/internal/repository"

	"go.uber.org/zap"
)

// Sweeper はpendingのまま放置された注文を定期的にcanceledへ落とす。
// 支払い猶予を過ぎた注文が対象。
type Sweeper struct {
	cartRepo repo.CartRepository
	expireIn time.Duration
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(
	cartRepo repo.CartRepository,
	expireIn time.Duration,
	interval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		cartRepo: cartRepo,
		expireIn: expireIn,
		interval: interval,
		logger:   logger,
	}
}

// Run はctxが閉じるまでintervalごとに1回スイープする。
// goroutineで呼ぶ想定。
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx, time.Now())
		}
	}
}

// SweepOnce はfinalized_atがnow-expireInより古いpendingをまとめてキャンセルする。
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) {
	olderThan := now.Add(-s.expireIn)

	n, err := s.cartRepo.CancelExpiredPending(ctx, olderThan)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired orders canceled", zap.Int64("count", n))
	}
}
