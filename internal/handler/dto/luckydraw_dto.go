package dto

import (
	"time"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
)

// PrizeInput - приз в запросе создания/обновления розыгрыша
type PrizeInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	ImageURL    string `json:"image_url"`
}

// ToPrizeList конвертирует призы запроса в entity-тип
func ToPrizeList(inputs []PrizeInput) entity.PrizeList {
	prizes := make(entity.PrizeList, 0, len(inputs))
	for _, in := range inputs {
		prizes = append(prizes, entity.Prize{
			Name:        in.Name,
			Description: in.Description,
			Quantity:    in.Quantity,
			ImageURL:    in.ImageURL,
		})
	}
	return prizes
}

// CreateLuckyDrawRequest - запрос создания розыгрыша
type CreateLuckyDrawRequest struct {
	CategoryID    uint         `json:"category_id" binding:"required"`
	Name          string       `json:"name" binding:"required"`
	Description   string       `json:"description"`
	ScheduledDate time.Time    `json:"scheduled_date" binding:"required"`
	Prizes        []PrizeInput `json:"prizes" binding:"required,min=1,dive"`
}

// UpdateLuckyDrawRequest - запрос обновления розыгрыша
type UpdateLuckyDrawRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Prizes      []PrizeInput `json:"prizes" binding:"omitempty,dive"`
}

// CancelLuckyDrawRequest - запрос отмены розыгрыша.
// Причина опциональна, без неё сервис подставит стандартную.
type CancelLuckyDrawRequest struct {
	Reason string `json:"reason"`
}

// RescheduleLuckyDrawRequest - запрос переноса розыгрыша
type RescheduleLuckyDrawRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}

// LuckyDrawResponse представляет розыгрыш в формате для ответа клиенту
type LuckyDrawResponse struct {
	ID                 uint              `json:"id"`
	CategoryID         uint              `json:"category_id"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	ScheduledDate      time.Time         `json:"scheduled_date"`
	Prizes             entity.PrizeList  `json:"prizes"`
	EligibleCount      int               `json:"eligible_count"`
	Winners            entity.WinnerList `json:"winners,omitempty"`
	Status             string            `json:"status"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewLuckyDrawResponse создает DTO для розыгрыша
func NewLuckyDrawResponse(d *entity.LuckyDraw) LuckyDrawResponse {
	return LuckyDrawResponse{
		ID:                 d.ID,
		CategoryID:         d.CategoryID,
		Name:               d.Name,
		Description:        d.Description,
		ScheduledDate:      d.ScheduledDate,
		Prizes:             d.Prizes,
		EligibleCount:      len(d.EligibleUsers),
		Winners:            d.Winners,
		Status:             d.Status,
		CancellationReason: d.CancellationReason,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// ParticipationResponse - участие пользователя в розыгрыше
type ParticipationResponse struct {
	LuckyDrawID uint               `json:"lucky_draw_id"`
	CategoryID  uint               `json:"category_id"`
	Eligible    bool               `json:"eligible"`
	Won         bool               `json:"won"`
	Prize       string             `json:"prize,omitempty"`
	Draw        *LuckyDrawResponse `json:"draw,omitempty"`
}

// NewParticipationResponse создает DTO участия
func NewParticipationResponse(record *service.ParticipationRecord) ParticipationResponse {
	resp := ParticipationResponse{
		LuckyDrawID: record.Participation.LuckyDrawID,
		CategoryID:  record.Participation.CategoryID,
		Eligible:    record.Participation.Eligible,
		Won:         record.Participation.Won,
		Prize:       record.Participation.Prize,
	}
	if record.Draw != nil {
		draw := NewLuckyDrawResponse(record.Draw)
		resp.Draw = &draw
	}
	return resp
}
