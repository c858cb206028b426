package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Progression хранит всё состояние прохождения одного пользователя.
// Одна строка на пользователя, списки в JSONB.
type Progression struct {
	ID                  uint                   `json:"id" gorm:"primaryKey"`
	UserID              uint                   `json:"user_id" gorm:"uniqueIndex;not null"`
	UnlockedCategories  UintList               `json:"unlocked_categories" gorm:"type:jsonb"`
	UnlockedQuizzes     UintList               `json:"unlocked_quizzes" gorm:"type:jsonb"`
	CurrentCategoryID   *uint                  `json:"current_category_id"`
	CurrentQuizID       *uint                  `json:"current_quiz_id"`
	CompletedQuizzes    CompletedQuizList      `json:"completed_quizzes" gorm:"type:jsonb"`
	CategoryCompletions CategoryCompletionList `json:"category_completions" gorm:"type:jsonb"`
	DrawParticipations  ParticipationList      `json:"draw_participations" gorm:"type:jsonb"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// CompletedQuiz - результат прохождения квиза
type CompletedQuiz struct {
	QuizID      uint      `json:"quiz_id"`
	Score       int       `json:"score"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"`
}

// CompletedQuizList - JSONB список результатов, не более одной записи на квиз
type CompletedQuizList []CompletedQuiz

// Scan реализует интерфейс sql.Scanner для CompletedQuizList
func (l *CompletedQuizList) Scan(value interface{}) error {
	if value == nil {
		*l = CompletedQuizList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = CompletedQuizList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для CompletedQuizList
func (l CompletedQuizList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Find возвращает запись по квизу
func (l CompletedQuizList) Find(quizID uint) (*CompletedQuiz, bool) {
	for i := range l {
		if l[i].QuizID == quizID {
			return &l[i], true
		}
	}
	return nil, false
}

// Upsert обновляет запись по квизу или добавляет новую
func (l *CompletedQuizList) Upsert(record CompletedQuiz) {
	for i := range *l {
		if (*l)[i].QuizID == record.QuizID {
			(*l)[i] = record
			return
		}
	}
	*l = append(*l, record)
}

// CategoryCompletion - факт полного прохождения категории
type CategoryCompletion struct {
	CategoryID            uint      `json:"category_id"`
	CompletedAt           time.Time `json:"completed_at"`
	LuckyDrawParticipated bool      `json:"lucky_draw_participated"`
	LuckyDrawWon          bool      `json:"lucky_draw_won"`
}

// CategoryCompletionList - JSONB список, не более одной записи на категорию
type CategoryCompletionList []CategoryCompletion

// Scan реализует интерфейс sql.Scanner для CategoryCompletionList
func (l *CategoryCompletionList) Scan(value interface{}) error {
	if value == nil {
		*l = CategoryCompletionList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = CategoryCompletionList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для CategoryCompletionList
func (l CategoryCompletionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Find возвращает запись по категории
func (l CategoryCompletionList) Find(categoryID uint) (*CategoryCompletion, bool) {
	for i := range l {
		if l[i].CategoryID == categoryID {
			return &l[i], true
		}
	}
	return nil, false
}

// Participation - участие пользователя в розыгрыше
type Participation struct {
	LuckyDrawID uint   `json:"lucky_draw_id"`
	CategoryID  uint   `json:"category_id"`
	Eligible    bool   `json:"eligible"`
	Won         bool   `json:"won"`
	Prize       string `json:"prize,omitempty"`
}

// ParticipationList - JSONB история участий в розыгрышах
type ParticipationList []Participation

// Scan реализует интерфейс sql.Scanner для ParticipationList
func (l *ParticipationList) Scan(value interface{}) error {
	if value == nil {
		*l = ParticipationList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = ParticipationList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для ParticipationList
func (l ParticipationList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Find возвращает запись участия в конкретном розыгрыше
func (l ParticipationList) Find(drawID uint) (*Participation, bool) {
	for i := range l {
		if l[i].LuckyDrawID == drawID {
			return &l[i], true
		}
	}
	return nil, false
}

// HasCompletedQuiz проверяет, пройден ли квиз на 100%
func (p *Progression) HasCompletedQuiz(quizID uint) bool {
	record, ok := p.CompletedQuizzes.Find(quizID)
	return ok && record.Completed
}

// HasCompletedCategory проверяет, есть ли запись о прохождении категории
func (p *Progression) HasCompletedCategory(categoryID uint) bool {
	_, ok := p.CategoryCompletions.Find(categoryID)
	return ok
}

// QuizScore возвращает последний результат по квизу (0, если квиз не сдавался)
func (p *Progression) QuizScore(quizID uint) int {
	if record, ok := p.CompletedQuizzes.Find(quizID); ok {
		return record.Score
	}
	return 0
}
