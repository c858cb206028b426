package service

import (
	"math"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
)

// AnswerSubmission - ответ пользователя на один вопрос
type AnswerSubmission struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

// GradeResult - итог проверки квиза
type GradeResult struct {
	Score          int  `json:"score"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
	IsPerfectScore bool `json:"is_perfect_score"`
}

// GradeQuiz проверяет ответы пользователя по вопросам квиза.
// Ответы на неизвестные вопросы молча игнорируются, повторный ответ на
// тот же вопрос не учитывается. Результат считается от полного числа
// вопросов квиза, а не от числа присланных ответов.
// Квиз без вопросов даёт результат 0 без признака идеального прохождения.
func GradeQuiz(quiz *entity.Quiz, answers []AnswerSubmission) GradeResult {
	total := len(quiz.Questions)
	if total == 0 {
		return GradeResult{}
	}

	correct := 0
	graded := make(map[uint]bool, len(answers))
	for _, a := range answers {
		question, ok := quiz.QuestionByID(a.QuestionID)
		if !ok || graded[question.ID] {
			continue
		}
		graded[question.ID] = true
		if question.IsCorrect(a.Answer) {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(total) * 100))

	return GradeResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		IsPerfectScore: score == 100,
	}
}
