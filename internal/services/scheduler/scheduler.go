// Package scheduler периодически находит членства, истекающие завтра,
// и публикует напоминания в очередь уведомлений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
	"github.com/magabrotheeeer/membership-gate/internal/rabbitmq"
)

// MembershipRepository определяет выборку истекающих членств.
type MembershipRepository interface {
	FindMembershipsExpiringTomorrow(ctx context.Context) ([]*models.ReminderInfo, error)
}

// SchedulerService публикует напоминания об истекающих членствах.
type SchedulerService struct {
	repo MembershipRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo MembershipRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// FindExpiringMemberships раз в 12 часов выбирает истекающие завтра
// членства и публикует их в обменник notifications.
func (s *SchedulerService) FindExpiringMemberships(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishExpiring(ctx, channel)
		}
	}
}

func (s *SchedulerService) publishExpiring(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find expiring memberships")
	reminders, err := s.repo.FindMembershipsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring memberships", sl.Err(err))
		return
	}
	if len(reminders) == 0 {
		s.log.Info("no expiring memberships found")
		return
	}
	s.log.Info("found expiring memberships", slog.Int("count", len(reminders)))
	for _, reminder := range reminders {
		err = rabbitmq.PublishMessage(channel, "notifications", "expiring", reminder)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
