package tasks

import (
	"context"
	"log"
	"time"

	"github.com/gringo-delivery/backend/internal/metrics"
	"github.com/gringo-delivery/backend/internal/repositories"
)

// ExpirySweeper periodically reclassifies PENDING notifications whose
// deadline has passed into EXPIRED. Reads never depend on the sweep: every
// response path re-checks expiresAt itself, so the interval only bounds how
// long stale PENDING rows linger in listings.
type ExpirySweeper struct {
	notifications repositories.NotificationRepository
	interval      time.Duration
}

// NewExpirySweeper creates a new ExpirySweeper
func NewExpirySweeper(notifications repositories.NotificationRepository, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{notifications: notifications, interval: interval}
}

// Run blocks, sweeping on every tick until ctx is cancelled
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Notification expiry sweep running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single pass
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	count, err := s.notifications.MarkExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Notification expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		metrics.NotificationsExpiredTotal.Add(float64(count))
		log.Printf("Notification expiry sweep reclassified %d records", count)
	}
}
