package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// ProgressionRepo реализует repository.ProgressionRepository
type ProgressionRepo struct {
	db *gorm.DB
}

// NewProgressionRepo создает новый репозиторий прогресса
func NewProgressionRepo(db *gorm.DB) *ProgressionRepo {
	return &ProgressionRepo{db: db}
}

// Create создает запись прогресса. Повторная инициализация того же
// пользователя ловится уникальным индексом user_id.
func (r *ProgressionRepo) Create(progression *entity.Progression) error {
	err := r.db.Create(progression).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: progression for user #%d already exists", apperrors.ErrConflict, progression.UserID)
		}
		return err
	}
	return nil
}

// GetByUserID возвращает прогресс пользователя
func (r *ProgressionRepo) GetByUserID(userID uint) (*entity.Progression, error) {
	var progression entity.Progression
	err := r.db.Where("user_id = ?", userID).First(&progression).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progression, nil
}

// ListAll возвращает прогресс всех пользователей
func (r *ProgressionRepo) ListAll() ([]entity.Progression, error) {
	var progressions []entity.Progression
	err := r.db.Find(&progressions).Error
	if err != nil {
		return nil, err
	}
	return progressions, nil
}

// ListByUserIDs возвращает прогресс перечисленных пользователей
func (r *ProgressionRepo) ListByUserIDs(userIDs []uint) ([]entity.Progression, error) {
	if len(userIDs) == 0 {
		return []entity.Progression{}, nil
	}
	var progressions []entity.Progression
	err := r.db.Where("user_id IN ?", userIDs).Find(&progressions).Error
	if err != nil {
		return nil, err
	}
	return progressions, nil
}

// Update обновляет прогресс пользователя
func (r *ProgressionRepo) Update(progression *entity.Progression) error {
	return r.db.Save(progression).Error
}

// DeleteByUserID удаляет прогресс пользователя
func (r *ProgressionRepo) DeleteByUserID(userID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entity.Progression{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
