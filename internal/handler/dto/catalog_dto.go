package dto

import (
	"time"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// LocalizedTextInput - локализованное значение в запросе
type LocalizedTextInput struct {
	LanguageID uint   `json:"language_id" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

// LocalizedOptionsInput - варианты ответа на одном языке в запросе
type LocalizedOptionsInput struct {
	LanguageID uint     `json:"language_id" binding:"required"`
	Values     []string `json:"values" binding:"required,min=2"`
}

// ToTextList конвертирует входной список в entity-тип
func ToTextList(inputs []LocalizedTextInput) entity.LocalizedTextList {
	list := make(entity.LocalizedTextList, 0, len(inputs))
	for _, in := range inputs {
		list = append(list, entity.LocalizedText{LanguageID: in.LanguageID, Value: in.Value})
	}
	return list
}

// ToOptionsList конвертирует входной список вариантов в entity-тип
func ToOptionsList(inputs []LocalizedOptionsInput) entity.LocalizedOptionsList {
	list := make(entity.LocalizedOptionsList, 0, len(inputs))
	for _, in := range inputs {
		list = append(list, entity.LocalizedOptions{LanguageID: in.LanguageID, Values: in.Values})
	}
	return list
}

// CreateCategoryRequest - запрос создания категории
type CreateCategoryRequest struct {
	Name        []LocalizedTextInput `json:"name" binding:"required,min=1"`
	Description []LocalizedTextInput `json:"description"`
	ImageURL    string               `json:"image_url"`
}

// UpdateCategoryRequest - запрос обновления категории
type UpdateCategoryRequest struct {
	Name        []LocalizedTextInput `json:"name"`
	Description []LocalizedTextInput `json:"description"`
	ImageURL    string               `json:"image_url"`
}

// CategoryResponse представляет категорию в формате для ответа клиенту
type CategoryResponse struct {
	ID          uint                     `json:"id"`
	Name        entity.LocalizedTextList `json:"name"`
	Description entity.LocalizedTextList `json:"description,omitempty"`
	ImageURL    string                   `json:"image_url,omitempty"`
	Quizzes     []QuizResponse           `json:"quizzes,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewCategoryResponse создает DTO для категории
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for i := range c.Quizzes {
		resp.Quizzes = append(resp.Quizzes, NewQuizResponse(&c.Quizzes[i], true))
	}
	return resp
}

// QuestionInput - вопрос в запросе создания/обновления квиза
type QuestionInput struct {
	Prompt         []LocalizedTextInput    `json:"prompt" binding:"required,min=1"`
	Options        []LocalizedOptionsInput `json:"options" binding:"required,min=1"`
	CorrectAnswers []LocalizedTextInput    `json:"correct_answers" binding:"required,min=1"`
}

// CreateQuizRequest - запрос создания квиза
type CreateQuizRequest struct {
	CategoryID  uint                 `json:"category_id" binding:"required"`
	Title       []LocalizedTextInput `json:"title" binding:"required,min=1"`
	Description []LocalizedTextInput `json:"description"`
	ImageURL    string               `json:"image_url"`
	VideoURL    string               `json:"video_url"`
	Questions   []QuestionInput      `json:"questions"`
}

// UpdateQuizRequest - запрос обновления квиза
type UpdateQuizRequest struct {
	Title       []LocalizedTextInput `json:"title"`
	Description []LocalizedTextInput `json:"description"`
	ImageURL    string               `json:"image_url"`
	VideoURL    string               `json:"video_url"`
}

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильные ответы включаются только в административные ответы.
type QuestionResponse struct {
	ID             uint                        `json:"id"`
	QuizID         uint                        `json:"quiz_id"`
	Prompt         entity.LocalizedTextList    `json:"prompt"`
	Options        entity.LocalizedOptionsList `json:"options"`
	CorrectAnswers entity.LocalizedTextList    `json:"correct_answers,omitempty"`
}

// QuizResponse представляет квиз в формате для ответа клиенту
type QuizResponse struct {
	ID            uint                     `json:"id"`
	CategoryID    uint                     `json:"category_id"`
	Title         entity.LocalizedTextList `json:"title"`
	Description   entity.LocalizedTextList `json:"description,omitempty"`
	ImageURL      string                   `json:"image_url,omitempty"`
	VideoURL      string                   `json:"video_url,omitempty"`
	Sequence      int                      `json:"sequence"`
	QuestionCount int                      `json:"question_count"`
	Questions     []QuestionResponse       `json:"questions,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// NewQuestionResponse создает DTO для вопроса.
// hideAnswers вычищает правильные ответы для пользовательской выдачи.
func NewQuestionResponse(q *entity.Question, hideAnswers bool) QuestionResponse {
	resp := QuestionResponse{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Prompt:  q.Prompt,
		Options: q.Options,
	}
	if !hideAnswers {
		resp.CorrectAnswers = q.CorrectAnswers
	}
	return resp
}

// NewQuizResponse создает DTO для квиза
func NewQuizResponse(quiz *entity.Quiz, hideAnswers bool) QuizResponse {
	resp := QuizResponse{
		ID:            quiz.ID,
		CategoryID:    quiz.CategoryID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		ImageURL:      quiz.ImageURL,
		VideoURL:      quiz.VideoURL,
		Sequence:      quiz.Sequence,
		QuestionCount: len(quiz.Questions),
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	for i := range quiz.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(&quiz.Questions[i], hideAnswers))
	}
	return resp
}
