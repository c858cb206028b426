package entity

import "time"

// Quiz представляет квиз внутри категории.
// Порядок прохождения внутри категории задаётся полем Sequence.
type Quiz struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	CategoryID  uint              `json:"category_id" gorm:"not null;index"`
	Title       LocalizedTextList `json:"title" gorm:"type:jsonb;not null"`
	Description LocalizedTextList `json:"description" gorm:"type:jsonb"`
	ImageURL    string            `json:"image_url" gorm:"size:512"`
	VideoURL    string            `json:"video_url" gorm:"size:512"`
	Sequence    int               `json:"sequence" gorm:"not null;default:0"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Ассоциации
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// QuestionCount возвращает число загруженных вопросов квиза
func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

// QuestionByID ищет вопрос квиза по идентификатору
func (q *Quiz) QuestionByID(id uint) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}

// Question представляет вопрос квиза
type Question struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	QuizID         uint                 `json:"quiz_id" gorm:"not null;index"`
	Prompt         LocalizedTextList    `json:"prompt" gorm:"type:jsonb;not null"`
	Options        LocalizedOptionsList `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswers LocalizedTextList    `json:"correct_answers" gorm:"type:jsonb;not null"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// IsCorrect проверяет ответ пользователя: ответ засчитывается, если строка
// совпадает с правильным значением хотя бы на одном из языков вопроса.
func (q *Question) IsCorrect(answer string) bool {
	return q.CorrectAnswers.Matches(answer)
}
