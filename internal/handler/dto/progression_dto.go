package dto

import (
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/service"
)

// AnswerInput - ответ на один вопрос в запросе сдачи квиза
type AnswerInput struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// SubmitQuizRequest - запрос сдачи квиза
type SubmitQuizRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required"`
}

// ToSubmissions конвертирует ответы запроса в сервисный формат
func (r *SubmitQuizRequest) ToSubmissions() []service.AnswerSubmission {
	answers := make([]service.AnswerSubmission, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, service.AnswerSubmission{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	return answers
}

// SubmitQuizResponse - итог сдачи квиза
type SubmitQuizResponse struct {
	Score             int                `json:"score"`
	CorrectAnswers    int                `json:"correct_answers"`
	TotalQuestions    int                `json:"total_questions"`
	IsPerfectScore    bool               `json:"is_perfect_score"`
	CategoryCompleted bool               `json:"category_completed"`
	LuckyDraw         *LuckyDrawResponse `json:"lucky_draw,omitempty"`
}

// NewSubmitQuizResponse создает DTO итога сдачи
func NewSubmitQuizResponse(result *service.SubmitResult) SubmitQuizResponse {
	resp := SubmitQuizResponse{
		Score:             result.Score,
		CorrectAnswers:    result.CorrectAnswers,
		TotalQuestions:    result.TotalQuestions,
		IsPerfectScore:    result.IsPerfectScore,
		CategoryCompleted: result.CategoryCompleted,
	}
	if result.AttachedDraw != nil {
		draw := NewLuckyDrawResponse(result.AttachedDraw)
		resp.LuckyDraw = &draw
	}
	return resp
}

// ProgressionResponse представляет прогресс пользователя
type ProgressionResponse struct {
	UserID              uint                          `json:"user_id"`
	UnlockedCategories  entity.UintList               `json:"unlocked_categories"`
	UnlockedQuizzes     entity.UintList               `json:"unlocked_quizzes"`
	CurrentCategoryID   *uint                         `json:"current_category_id"`
	CurrentQuizID       *uint                         `json:"current_quiz_id"`
	CompletedQuizzes    entity.CompletedQuizList      `json:"completed_quizzes"`
	CategoryCompletions entity.CategoryCompletionList `json:"category_completions"`
}

// NewProgressionResponse создает DTO прогресса
func NewProgressionResponse(p *entity.Progression) ProgressionResponse {
	return ProgressionResponse{
		UserID:              p.UserID,
		UnlockedCategories:  p.UnlockedCategories,
		UnlockedQuizzes:     p.UnlockedQuizzes,
		CurrentCategoryID:   p.CurrentCategoryID,
		CurrentQuizID:       p.CurrentQuizID,
		CompletedQuizzes:    p.CompletedQuizzes,
		CategoryCompletions: p.CategoryCompletions,
	}
}

// AnnotatedQuizResponse - квиз с аннотацией доступности
type AnnotatedQuizResponse struct {
	QuizResponse
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
	Score     int  `json:"score"`
}

// AvailableQuizzesResponse - все квизы с аннотацией и текущими указателями
type AvailableQuizzesResponse struct {
	Quizzes           []AnnotatedQuizResponse `json:"quizzes"`
	CurrentCategoryID *uint                   `json:"current_category_id"`
	CurrentQuizID     *uint                   `json:"current_quiz_id"`
}

// NewAvailableQuizzesResponse создает DTO доступности квизов.
// Правильные ответы никогда не попадают в эту выдачу.
func NewAvailableQuizzesResponse(overview *service.AvailabilityOverview) AvailableQuizzesResponse {
	resp := AvailableQuizzesResponse{
		CurrentCategoryID: overview.CurrentCategoryID,
		CurrentQuizID:     overview.CurrentQuizID,
		Quizzes:           make([]AnnotatedQuizResponse, 0, len(overview.Quizzes)),
	}
	for i := range overview.Quizzes {
		q := &overview.Quizzes[i]
		resp.Quizzes = append(resp.Quizzes, AnnotatedQuizResponse{
			QuizResponse: NewQuizResponse(&q.Quiz, true),
			Unlocked:     q.Unlocked,
			Completed:    q.Completed,
			Score:        q.Score,
		})
	}
	return resp
}

// AnnotatedCategoryResponse - категория с аннотацией доступности
type AnnotatedCategoryResponse struct {
	CategoryResponse
	Unlocked    bool  `json:"unlocked"`
	Completed   bool  `json:"completed"`
	FirstQuizID *uint `json:"first_quiz_id,omitempty"`
}

// NewAnnotatedCategoryResponse создает DTO категории с доступностью
func NewAnnotatedCategoryResponse(a *service.CategoryAvailability) AnnotatedCategoryResponse {
	return AnnotatedCategoryResponse{
		CategoryResponse: NewCategoryResponse(&a.Category),
		Unlocked:         a.Unlocked,
		Completed:        a.Completed,
		FirstQuizID:      a.FirstQuizID,
	}
}
