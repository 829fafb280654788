package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"kritika/internal/app/kritika/service"
	"kritika/pkg/logger"
)

// CronScheduler периодически прогревает кеш справочников
type CronScheduler struct {
	cron           *cron.Cron
	catalogService service.CatalogServiceInterface
}

func NewCronScheduler(catalogService service.CatalogServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:           cron.New(),
		catalogService: catalogService,
	}
}

// Start регистрирует задачу прогрева и сразу выполняет ее один раз,
// чтобы кеш был теплым с первого запроса
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.catalogService.WarmCache(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled cache warm failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("cron scheduler started")

	if err := s.catalogService.WarmCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial cache warm failed")
	}
	return nil
}

func (s *CronScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("cron scheduler stopped")
}
