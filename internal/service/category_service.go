package service

import (
	"fmt"
	"log"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// CategoryService управляет каталогом категорий
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService создает новый сервис категорий
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory создает категорию. Имя должно быть уникальным в рамках
// каждого языка.
func (s *CategoryService) CreateCategory(category *entity.Category) error {
	if len(category.Name) == 0 {
		return fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}

	if err := s.checkNameUnique(category); err != nil {
		return err
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return err
	}
	log.Printf("[CategoryService] Создана категория %d", category.ID)
	return nil
}

// GetCategory возвращает категорию по ID
func (s *CategoryService) GetCategory(id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// GetCategoryWithQuizzes возвращает категорию вместе с квизами
func (s *CategoryService) GetCategoryWithQuizzes(id uint) (*entity.Category, error) {
	return s.categoryRepo.GetWithQuizzes(id)
}

// ListCategories возвращает все категории в порядке создания
func (s *CategoryService) ListCategories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// UpdateCategory обновляет категорию с проверкой уникальности имени
func (s *CategoryService) UpdateCategory(category *entity.Category) error {
	if _, err := s.categoryRepo.GetByID(category.ID); err != nil {
		return err
	}
	if err := s.checkNameUnique(category); err != nil {
		return err
	}
	return s.categoryRepo.Update(category)
}

// DeleteCategory удаляет категорию
func (s *CategoryService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("[CategoryService] Удалена категория %d", id)
	return nil
}

// checkNameUnique проверяет, что ни одно из языковых значений имени не
// занято другой категорией
func (s *CategoryService) checkNameUnique(category *entity.Category) error {
	existing, err := s.categoryRepo.List()
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == category.ID {
			continue
		}
		for _, name := range category.Name {
			if other.Name.Contains(name.LanguageID, name.Value) {
				return fmt.Errorf("%w: category name %q already used by category #%d",
					apperrors.ErrConflict, name.Value, other.ID)
			}
		}
	}
	return nil
}
