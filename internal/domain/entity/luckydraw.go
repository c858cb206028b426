package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Статусы розыгрыша
const (
	LuckyDrawStatusScheduled = "scheduled"
	LuckyDrawStatusCompleted = "completed"
	LuckyDrawStatusCancelled = "cancelled"
)

// LuckyDraw представляет розыгрыш призов среди пользователей,
// полностью прошедших категорию. Розыгрыш ежемесячный: после проведения
// дата сдвигается на месяц вперёд, а победители накапливаются.
type LuckyDraw struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	CategoryID         uint       `json:"category_id" gorm:"not null;index"`
	Name               string     `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Description        string     `json:"description" gorm:"type:text"`
	ScheduledDate      time.Time  `json:"scheduled_date" gorm:"not null;index"`
	Prizes             PrizeList  `json:"prizes" gorm:"type:jsonb;not null"`
	EligibleUsers      UintList   `json:"eligible_users" gorm:"type:jsonb"`
	Winners            WinnerList `json:"winners" gorm:"type:jsonb"`
	Status             string     `json:"status" gorm:"size:20;default:'scheduled';index"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsScheduled проверяет, запланирован ли розыгрыш
func (d *LuckyDraw) IsScheduled() bool {
	return d.Status == LuckyDrawStatusScheduled
}

// IsCompleted проверяет, завершён ли розыгрыш
func (d *LuckyDraw) IsCompleted() bool {
	return d.Status == LuckyDrawStatusCompleted
}

// IsCancelled проверяет, отменён ли розыгрыш
func (d *LuckyDraw) IsCancelled() bool {
	return d.Status == LuckyDrawStatusCancelled
}

// TotalPrizeSlots возвращает суммарное число призовых мест
func (d *LuckyDraw) TotalPrizeSlots() int {
	total := 0
	for _, p := range d.Prizes {
		total += p.Quantity
	}
	return total
}

// Prize - приз розыгрыша
type Prize struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	ImageURL    string `json:"image_url,omitempty"`
}

// PrizeList - JSONB список призов
type PrizeList []Prize

// Scan реализует интерфейс sql.Scanner для PrizeList
func (l *PrizeList) Scan(value interface{}) error {
	if value == nil {
		*l = PrizeList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = PrizeList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для PrizeList
func (l PrizeList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Winner - победитель одного из проведений розыгрыша
type Winner struct {
	UserID     uint      `json:"user_id"`
	Prize      string    `json:"prize"`
	SelectedAt time.Time `json:"selected_at"`
}

// WinnerList - JSONB накопительный список победителей
type WinnerList []Winner

// Scan реализует интерфейс sql.Scanner для WinnerList
func (l *WinnerList) Scan(value interface{}) error {
	if value == nil {
		*l = WinnerList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = WinnerList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для WinnerList
func (l WinnerList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// ContainsUser проверяет, выигрывал ли пользователь хотя бы раз
func (l WinnerList) ContainsUser(userID uint) bool {
	for _, w := range l {
		if w.UserID == userID {
			return true
		}
	}
	return false
}
