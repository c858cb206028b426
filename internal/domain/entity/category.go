package entity

import "time"

// Category представляет категорию квизов
type Category struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Name        LocalizedTextList `json:"name" gorm:"type:jsonb;not null"`
	Description LocalizedTextList `json:"description" gorm:"type:jsonb"`
	ImageURL    string            `json:"image_url" gorm:"size:512"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Ассоциации
	Quizzes []Quiz `json:"quizzes,omitempty" gorm:"foreignKey:CategoryID"`
}
