package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/handler/dto"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
)

// QuizHandler обрабатывает административные запросы каталога квизов
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик квизов
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuiz создает новый квиз вместе с вопросами
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := &entity.Quiz{
		CategoryID:  req.CategoryID,
		Title:       dto.ToTextList(req.Title),
		Description: dto.ToTextList(req.Description),
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
	}
	for _, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, entity.Question{
			Prompt:         dto.ToTextList(q.Prompt),
			Options:        dto.ToOptionsList(q.Options),
			CorrectAnswers: dto.ToTextList(q.CorrectAnswers),
		})
	}

	if err := h.quizService.CreateQuiz(quiz); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, false))
}

// GetQuiz возвращает квиз с вопросами и правильными ответами (админ)
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuizWithQuestions(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, false))
}

// ListQuizzesByCategory возвращает квизы категории в порядке sequence
func (h *QuizHandler) ListQuizzesByCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	quizzes, err := h.quizService.ListQuizzesByCategory(categoryID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	responses := make([]dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		responses = append(responses, dto.NewQuizResponse(&quizzes[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": responses})
}

// UpdateQuiz обновляет квиз
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req dto.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.GetQuizWithQuestions(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	if len(req.Title) > 0 {
		quiz.Title = dto.ToTextList(req.Title)
	}
	if len(req.Description) > 0 {
		quiz.Description = dto.ToTextList(req.Description)
	}
	if req.ImageURL != "" {
		quiz.ImageURL = req.ImageURL
	}
	if req.VideoURL != "" {
		quiz.VideoURL = req.VideoURL
	}

	if err := h.quizService.UpdateQuiz(quiz); err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, false))
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.DeleteQuiz(quizID); err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
