package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedQuizList_Upsert_NewRecord(t *testing.T) {
	// Arrange
	var list CompletedQuizList

	// Act
	list.Upsert(CompletedQuiz{QuizID: 1, Score: 60, Completed: false, CompletedAt: time.Now()})

	// Assert
	require.Len(t, list, 1)
	assert.Equal(t, 60, list[0].Score)
}

func TestCompletedQuizList_Upsert_ReplacesExisting(t *testing.T) {
	// Arrange
	list := CompletedQuizList{
		{QuizID: 1, Score: 60, Completed: false},
	}

	// Act: повторная сдача того же квиза
	list.Upsert(CompletedQuiz{QuizID: 1, Score: 100, Completed: true})

	// Assert: запись обновлена на месте, дубликата нет
	require.Len(t, list, 1, "На квиз должна быть не более одной записи")
	assert.Equal(t, 100, list[0].Score)
	assert.True(t, list[0].Completed)
}

func TestProgression_HasCompletedQuiz(t *testing.T) {
	// Arrange
	progression := &Progression{
		CompletedQuizzes: CompletedQuizList{
			{QuizID: 1, Score: 100, Completed: true},
			{QuizID: 2, Score: 80, Completed: false},
		},
	}

	// Act & Assert
	assert.True(t, progression.HasCompletedQuiz(1), "Квиз со 100% должен считаться пройденным")
	assert.False(t, progression.HasCompletedQuiz(2), "Квиз с 80% не должен считаться пройденным")
	assert.False(t, progression.HasCompletedQuiz(3), "Несдававшийся квиз не должен считаться пройденным")
}

func TestProgression_QuizScore(t *testing.T) {
	// Arrange
	progression := &Progression{
		CompletedQuizzes: CompletedQuizList{
			{QuizID: 1, Score: 75},
		},
	}

	// Act & Assert
	assert.Equal(t, 75, progression.QuizScore(1))
	assert.Equal(t, 0, progression.QuizScore(2), "Для несдававшегося квиза результат 0")
}

func TestCategoryCompletionList_Find(t *testing.T) {
	// Arrange
	list := CategoryCompletionList{
		{CategoryID: 3, CompletedAt: time.Now()},
	}

	// Act & Assert
	record, ok := list.Find(3)
	require.True(t, ok)
	assert.Equal(t, uint(3), record.CategoryID)

	_, ok = list.Find(4)
	assert.False(t, ok)
}

func TestParticipationList_Find_MutableRecord(t *testing.T) {
	// Arrange
	list := ParticipationList{
		{LuckyDrawID: 1, CategoryID: 2, Eligible: true},
	}

	// Act: Find возвращает указатель на элемент списка
	record, ok := list.Find(1)
	require.True(t, ok)
	record.Won = true
	record.Prize = "Умра"

	// Assert: изменение видно в исходном списке
	assert.True(t, list[0].Won)
	assert.Equal(t, "Умра", list[0].Prize)
}

func TestParticipationList_Scan_NullValue(t *testing.T) {
	// Arrange
	var list ParticipationList

	// Act
	err := list.Scan(nil)

	// Assert
	require.NoError(t, err)
	assert.Len(t, list, 0)
}
