package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	"github.com/testofislamworld/islamic-quiz-backend/internal/handler/dto"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
)

// LuckyDrawHandler обрабатывает запросы жизненного цикла розыгрышей
type LuckyDrawHandler struct {
	drawService *service.LuckyDrawService
}

// NewLuckyDrawHandler создает новый обработчик розыгрышей
func NewLuckyDrawHandler(drawService *service.LuckyDrawService) *LuckyDrawHandler {
	return &LuckyDrawHandler{drawService: drawService}
}

// CreateDraw создает новый розыгрыш
func (h *LuckyDrawHandler) CreateDraw(c *gin.Context) {
	var req dto.CreateLuckyDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draw, err := h.drawService.CreateDraw(service.CreateDrawInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		Prizes:        dto.ToPrizeList(req.Prizes),
	})
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLuckyDrawResponse(draw))
}

// GetDraw возвращает розыгрыш по ID
func (h *LuckyDrawHandler) GetDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	draw, err := h.drawService.GetDraw(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// ListDraws возвращает розыгрыши с фильтрами по статусу и категории
func (h *LuckyDrawHandler) ListDraws(c *gin.Context) {
	filters := repository.LuckyDrawFilters{
		Status: c.Query("status"),
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		filters.CategoryID = uint(categoryID)
	}

	draws, err := h.drawService.ListDraws(filters)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	responses := make([]dto.LuckyDrawResponse, 0, len(draws))
	for i := range draws {
		responses = append(responses, dto.NewLuckyDrawResponse(&draws[i]))
	}
	c.JSON(http.StatusOK, gin.H{"lucky_draws": responses})
}

// UpdateDraw обновляет запланированный розыгрыш
func (h *LuckyDrawHandler) UpdateDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	var req dto.UpdateLuckyDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draw, err := h.drawService.UpdateDraw(drawID, req.Name, req.Description, dto.ToPrizeList(req.Prizes))
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// DeleteDraw удаляет розыгрыш
func (h *LuckyDrawHandler) DeleteDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	if err := h.drawService.DeleteDraw(drawID); err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lucky draw deleted"})
}

// CancelDraw отменяет запланированный розыгрыш
func (h *LuckyDrawHandler) CancelDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	var req dto.CancelLuckyDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draw, err := h.drawService.CancelDraw(drawID, req.Reason)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// RescheduleDraw переносит розыгрыш на новую дату
func (h *LuckyDrawHandler) RescheduleDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	var req dto.RescheduleLuckyDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draw, err := h.drawService.RescheduleDraw(drawID, req.ScheduledDate)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// ExecuteDraw проводит розыгрыш вручную
func (h *LuckyDrawHandler) ExecuteDraw(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	draw, err := h.drawService.ExecuteDraw(c.Request.Context(), drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// EligibleUsers возвращает пул участников розыгрыша
func (h *LuckyDrawHandler) EligibleUsers(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	users, err := h.drawService.EligibleUsers(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible_users": users, "count": len(users)})
}

// RefreshEligibleUsers пересчитывает пул участников
func (h *LuckyDrawHandler) RefreshEligibleUsers(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	draw, err := h.drawService.RefreshEligibleUsers(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLuckyDrawResponse(draw))
}

// Winners возвращает накопительный список победителей
func (h *LuckyDrawHandler) Winners(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	winners, err := h.drawService.Winners(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ExportWinners выгружает победителей розыгрыша в xlsx
func (h *LuckyDrawHandler) ExportWinners(c *gin.Context) {
	drawID := c.MustGet("drawID").(uint)

	draw, err := h.drawService.GetDraw(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	winners, err := h.drawService.Winners(drawID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"winners_draw_%d.xlsx\"", drawID))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Победители"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[LuckyDrawHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"№", "ID пользователя", "Приз", "Дата выбора", "Розыгрыш"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[LuckyDrawHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, w := range winners {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)
		row := []interface{}{i + 1, w.UserID, w.Prize, w.SelectedAt.Format(time.RFC3339), draw.Name}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[LuckyDrawHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[LuckyDrawHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[LuckyDrawHandler] Ошибка записи Excel в response: %v", err)
	}
}

// Stats возвращает сводную статистику по розыгрышам
func (h *LuckyDrawHandler) Stats(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	var categoryID uint
	if id, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		categoryID = uint(id)
	}

	stats, err := h.drawService.Stats(year, month, categoryID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// WinnerStats возвращает топ победителей
func (h *LuckyDrawHandler) WinnerStats(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	stats, err := h.drawService.WinnerStats(limit)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winner_stats": stats})
}

// UserDrawHistory возвращает историю участий текущего пользователя
func (h *LuckyDrawHandler) UserDrawHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	history, err := h.drawService.UserDrawHistory(userID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	responses := make([]dto.ParticipationResponse, 0, len(history))
	for i := range history {
		responses = append(responses, dto.NewParticipationResponse(&history[i]))
	}
	c.JSON(http.StatusOK, gin.H{"history": responses})
}

// UpcomingDraws возвращает будущие розыгрыши текущего пользователя
func (h *LuckyDrawHandler) UpcomingDraws(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	draws, err := h.drawService.UpcomingDrawsForUser(userID)
	if err != nil {
		h.handleDrawError(c, err)
		return
	}

	responses := make([]dto.LuckyDrawResponse, 0, len(draws))
	for i := range draws {
		responses = append(responses, dto.NewLuckyDrawResponse(&draws[i]))
	}
	c.JSON(http.StatusOK, gin.H{"upcoming": responses})
}

func (h *LuckyDrawHandler) handleDrawError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in LuckyDrawHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
