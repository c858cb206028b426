package repository

import (
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с категориями
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	GetWithQuizzes(id uint) (*entity.Category, error)
	// List возвращает все категории в порядке создания (поле created_at)
	List() ([]entity.Category, error)
	// First возвращает самую раннюю категорию (порядок прохождения)
	First() (*entity.Category, error)
	// NextAfter возвращает ближайшую категорию, созданную после указанной
	NextAfter(category *entity.Category) (*entity.Category, error)
	Update(category *entity.Category) error
	Delete(id uint) error
}
