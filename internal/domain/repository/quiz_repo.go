package repository

import (
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// QuizRepository определяет методы для работы с квизами
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	// ListByCategory возвращает квизы категории в порядке поля sequence
	ListByCategory(categoryID uint) ([]entity.Quiz, error)
	// ListAllWithQuestions возвращает все квизы с вопросами (для движка разблокировки)
	ListAllWithQuestions() ([]entity.Quiz, error)
	// MaxSequence возвращает максимальный sequence внутри категории (0, если квизов нет)
	MaxSequence(categoryID uint) (int, error)
	Update(quiz *entity.Quiz) error
	Delete(id uint) error
}
