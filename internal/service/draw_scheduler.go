package service

import (
	"context"
	"log"
	"time"
)

// DrawScheduler периодически проводит назревшие розыгрыши.
// Запускается отдельной горутиной и останавливается через контекст.
type DrawScheduler struct {
	drawService *LuckyDrawService
	interval    time.Duration
}

// NewDrawScheduler создает новый планировщик розыгрышей
func NewDrawScheduler(drawService *LuckyDrawService, interval time.Duration) *DrawScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &DrawScheduler{
		drawService: drawService,
		interval:    interval,
	}
}

// Start запускает цикл планировщика. Блокирует до отмены контекста,
// поэтому вызывается в отдельной горутине. Первый проход выполняется
// сразу при старте.
func (s *DrawScheduler) Start(ctx context.Context) {
	log.Printf("[DrawScheduler] Запуск планировщика розыгрышей, интервал %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[DrawScheduler] Планировщик остановлен")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce выполняет один проход. Паника внутри прохода не роняет цикл.
func (s *DrawScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DrawScheduler] Паника в проходе планировщика: %v", r)
		}
	}()

	summary, err := s.drawService.RunDueDraws(ctx, time.Now())
	if err != nil {
		log.Printf("[DrawScheduler] Ошибка прохода планировщика: %v", err)
		return
	}
	if summary.Processed > 0 {
		log.Printf("[DrawScheduler] Проход завершён: обработано %d, проведено %d, ошибок %d",
			summary.Processed, summary.Executed, len(summary.Failures))
	}
}
