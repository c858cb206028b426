package postgres

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// UserDirectoryRepo реализует repository.UserDirectory поверх таблицы users
type UserDirectoryRepo struct {
	db *gorm.DB
}

// NewUserDirectoryRepo создает новый справочник пользователей
func NewUserDirectoryRepo(db *gorm.DB) *UserDirectoryRepo {
	return &UserDirectoryRepo{db: db}
}

// EmailByUserID возвращает email пользователя
func (r *UserDirectoryRepo) EmailByUserID(userID uint) (string, error) {
	var email string
	err := r.db.Table("users").
		Select("email").
		Where("id = ?", userID).
		Take(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrNotFound
		}
		return "", err
	}
	return email, nil
}
