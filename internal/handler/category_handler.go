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

// CategoryHandler обрабатывает запросы каталога категорий
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategory создает новую категорию
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &entity.Category{
		Name:        dto.ToTextList(req.Name),
		Description: dto.ToTextList(req.Description),
		ImageURL:    req.ImageURL,
	}
	if err := h.categoryService.CreateCategory(category); err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// GetCategory возвращает категорию с квизами
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	category, err := h.categoryService.GetCategoryWithQuizzes(categoryID)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// ListCategories возвращает все категории в порядке создания
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, dto.NewCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, gin.H{"categories": responses})
}

// UpdateCategory обновляет категорию
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.GetCategory(categoryID)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	if len(req.Name) > 0 {
		category.Name = dto.ToTextList(req.Name)
	}
	if len(req.Description) > 0 {
		category.Description = dto.ToTextList(req.Description)
	}
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}

	if err := h.categoryService.UpdateCategory(category); err != nil {
		h.handleCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// DeleteCategory удаляет категорию
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		h.handleCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (h *CategoryHandler) handleCategoryError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in CategoryHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
