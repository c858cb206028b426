package repository

import (
	"time"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// LuckyDrawFilters определяет фильтры для поиска розыгрышей
type LuckyDrawFilters struct {
	Status     string     // Фильтр по статусу (scheduled, completed, cancelled)
	CategoryID uint       // Фильтр по категории
	DateFrom   *time.Time // Нижняя граница запланированной даты
	DateTo     *time.Time // Верхняя граница запланированной даты
}

// LuckyDrawRepository определяет методы для работы с розыгрышами
type LuckyDrawRepository interface {
	Create(draw *entity.LuckyDraw) error
	GetByID(id uint) (*entity.LuckyDraw, error)
	List(filters LuckyDrawFilters) ([]entity.LuckyDraw, error)
	// ListScheduledByCategory возвращает запланированные розыгрыши категории
	// в порядке запланированной даты
	ListScheduledByCategory(categoryID uint) ([]entity.LuckyDraw, error)
	// ListDueBetween возвращает запланированные розыгрыши с датой в интервале [from, to)
	ListDueBetween(from, to time.Time) ([]entity.LuckyDraw, error)
	Update(draw *entity.LuckyDraw) error
	Delete(id uint) error
}
