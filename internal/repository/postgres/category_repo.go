package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает новую категорию
func (r *CategoryRepo) Create(category *entity.Category) error {
	return r.db.Create(category).Error
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetWithQuizzes возвращает категорию вместе с квизами (в порядке sequence)
func (r *CategoryRepo) GetWithQuizzes(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.Preload("Quizzes", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence")
	}).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// List возвращает все категории в порядке создания
func (r *CategoryRepo) List() ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.Order("created_at").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// First возвращает самую раннюю категорию
func (r *CategoryRepo) First() (*entity.Category, error) {
	var category entity.Category
	err := r.db.Order("created_at").First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// NextAfter возвращает ближайшую категорию, созданную после указанной
func (r *CategoryRepo) NextAfter(category *entity.Category) (*entity.Category, error) {
	var next entity.Category
	err := r.db.Where("created_at > ?", category.CreatedAt).
		Order("created_at").
		First(&next).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &next, nil
}

// Update обновляет категорию
func (r *CategoryRepo) Update(category *entity.Category) error {
	return r.db.Save(category).Error
}

// Delete удаляет категорию
func (r *CategoryRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
