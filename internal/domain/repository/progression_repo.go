package repository

import (
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// ProgressionRepository определяет методы для работы с прогрессом пользователей
type ProgressionRepository interface {
	Create(progression *entity.Progression) error
	GetByUserID(userID uint) (*entity.Progression, error)
	// ListAll возвращает прогресс всех пользователей (полный пересчёт пула розыгрыша)
	ListAll() ([]entity.Progression, error)
	// ListByUserIDs возвращает прогресс перечисленных пользователей
	ListByUserIDs(userIDs []uint) ([]entity.Progression, error)
	Update(progression *entity.Progression) error
	DeleteByUserID(userID uint) error
}
