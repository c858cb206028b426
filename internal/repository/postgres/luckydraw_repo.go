package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// LuckyDrawRepo реализует repository.LuckyDrawRepository
type LuckyDrawRepo struct {
	db *gorm.DB
}

// NewLuckyDrawRepo создает новый репозиторий розыгрышей
func NewLuckyDrawRepo(db *gorm.DB) *LuckyDrawRepo {
	return &LuckyDrawRepo{db: db}
}

// Create создает новый розыгрыш. Дубликат имени ловится уникальным индексом.
func (r *LuckyDrawRepo) Create(draw *entity.LuckyDraw) error {
	err := r.db.Create(draw).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lucky draw with name %q already exists", apperrors.ErrConflict, draw.Name)
		}
		return err
	}
	return nil
}

// GetByID возвращает розыгрыш по ID
func (r *LuckyDrawRepo) GetByID(id uint) (*entity.LuckyDraw, error) {
	var draw entity.LuckyDraw
	err := r.db.First(&draw, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// List возвращает розыгрыши по фильтрам в порядке запланированной даты
func (r *LuckyDrawRepo) List(filters repository.LuckyDrawFilters) ([]entity.LuckyDraw, error) {
	query := r.db.Model(&entity.LuckyDraw{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.CategoryID != 0 {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.DateFrom != nil {
		query = query.Where("scheduled_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("scheduled_date < ?", *filters.DateTo)
	}

	var draws []entity.LuckyDraw
	err := query.Order("scheduled_date").Find(&draws).Error
	if err != nil {
		return nil, err
	}
	return draws, nil
}

// ListScheduledByCategory возвращает запланированные розыгрыши категории
func (r *LuckyDrawRepo) ListScheduledByCategory(categoryID uint) ([]entity.LuckyDraw, error) {
	var draws []entity.LuckyDraw
	err := r.db.Where("category_id = ? AND status = ?", categoryID, entity.LuckyDrawStatusScheduled).
		Order("scheduled_date").
		Find(&draws).Error
	if err != nil {
		return nil, err
	}
	return draws, nil
}

// ListDueBetween возвращает запланированные розыгрыши с датой в интервале [from, to)
func (r *LuckyDrawRepo) ListDueBetween(from, to time.Time) ([]entity.LuckyDraw, error) {
	var draws []entity.LuckyDraw
	err := r.db.Where("status = ? AND scheduled_date >= ? AND scheduled_date < ?",
		entity.LuckyDrawStatusScheduled, from, to).
		Order("scheduled_date").
		Find(&draws).Error
	if err != nil {
		return nil, err
	}
	return draws, nil
}

// Update обновляет розыгрыш
func (r *LuckyDrawRepo) Update(draw *entity.LuckyDraw) error {
	err := r.db.Save(draw).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: lucky draw with name %q already exists", apperrors.ErrConflict, draw.Name)
	}
	return err
}

// Delete удаляет розыгрыш
func (r *LuckyDrawRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.LuckyDraw{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
