package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/testofislamworld/islamic-quiz-backend/internal/handler/dto"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
)

// ProgressionHandler обрабатывает пользовательские запросы прогресса
type ProgressionHandler struct {
	progressionService *service.ProgressionService
}

// NewProgressionHandler создает новый обработчик прогресса
func NewProgressionHandler(progressionService *service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progressionService: progressionService}
}

// InitProgression инициализирует прогресс текущего пользователя
func (h *ProgressionHandler) InitProgression(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	progression, err := h.progressionService.InitProgression(userID)
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewProgressionResponse(progression))
}

// ResetProgression сбрасывает и заново инициализирует прогресс
func (h *ProgressionHandler) ResetProgression(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	progression, err := h.progressionService.ResetProgression(userID)
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProgressionResponse(progression))
}

// AvailableQuizzes возвращает все квизы с аннотацией доступности
func (h *ProgressionHandler) AvailableQuizzes(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	overview, err := h.progressionService.AvailableQuizzes(userID)
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAvailableQuizzesResponse(overview))
}

// AvailableCategories возвращает категории с аннотацией доступности
func (h *ProgressionHandler) AvailableCategories(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	availabilities, err := h.progressionService.AvailableCategories(userID)
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	responses := make([]dto.AnnotatedCategoryResponse, 0, len(availabilities))
	for i := range availabilities {
		responses = append(responses, dto.NewAnnotatedCategoryResponse(&availabilities[i]))
	}
	c.JSON(http.StatusOK, gin.H{"categories": responses})
}

// GetQuiz возвращает открытый пользователю квиз без правильных ответов
func (h *ProgressionHandler) GetQuiz(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.progressionService.GetQuizForUser(userID, quizID)
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// SubmitQuiz принимает ответы и возвращает результат проверки
func (h *ProgressionHandler) SubmitQuiz(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	quizID := c.MustGet("quizID").(uint)

	var req dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.progressionService.SubmitQuiz(userID, quizID, req.ToSubmissions())
	if err != nil {
		h.handleProgressionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmitQuizResponse(result))
}

func (h *ProgressionHandler) handleProgressionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ProgressionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
