package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/testofislamworld/islamic-quiz-backend/internal/config"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

func newProgressionServiceForTest(policy string) (*ProgressionService, *MockProgressionRepository, *MockCategoryRepository, *MockQuizRepository, *MockLuckyDrawRepository) {
	progressionRepo := new(MockProgressionRepository)
	categoryRepo := new(MockCategoryRepository)
	quizRepo := new(MockQuizRepository)
	drawRepo := new(MockLuckyDrawRepository)
	svc := NewProgressionService(progressionRepo, categoryRepo, quizRepo, drawRepo, nil, policy)
	return svc, progressionRepo, categoryRepo, quizRepo, drawRepo
}

func categoryQuizzes(categoryID uint, ids ...uint) []entity.Quiz {
	quizzes := make([]entity.Quiz, 0, len(ids))
	for i, id := range ids {
		quizzes = append(quizzes, entity.Quiz{ID: id, CategoryID: categoryID, Sequence: i + 1})
	}
	return quizzes
}

func perfectAnswers(quiz *entity.Quiz) []AnswerSubmission {
	answers := make([]AnswerSubmission, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answers = append(answers, AnswerSubmission{QuestionID: q.ID, Answer: q.CorrectAnswers[0].Value})
	}
	return answers
}

func TestInitProgression_UnlocksFirstCategoryAndQuiz(t *testing.T) {
	// Arrange
	svc, progressionRepo, categoryRepo, quizRepo, _ := newProgressionServiceForTest("")
	categoryRepo.On("First").Return(&entity.Category{ID: 1}, nil)
	quizRepo.On("ListByCategory", uint(1)).Return(categoryQuizzes(1, 10, 11), nil)
	progressionRepo.On("Create", mock.AnythingOfType("*entity.Progression")).Return(nil)

	// Act
	progression, err := svc.InitProgression(42)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), progression.UserID)
	assert.Equal(t, entity.UintList{1}, progression.UnlockedCategories)
	assert.Equal(t, entity.UintList{10}, progression.UnlockedQuizzes, "Открывается только первый квиз категории")
	require.NotNil(t, progression.CurrentQuizID)
	assert.Equal(t, uint(10), *progression.CurrentQuizID)
	progressionRepo.AssertExpectations(t)
}

func TestInitProgression_NoCategories(t *testing.T) {
	// Arrange
	svc, _, categoryRepo, _, _ := newProgressionServiceForTest("")
	categoryRepo.On("First").Return(nil, apperrors.ErrNotFound)

	// Act
	_, err := svc.InitProgression(42)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmitQuiz_LockedQuiz(t *testing.T) {
	// Arrange
	svc, progressionRepo, _, quizRepo, _ := newProgressionServiceForTest("")
	quiz := &entity.Quiz{ID: 5, CategoryID: 1, Sequence: 2}
	quizRepo.On("GetWithQuestions", uint(5)).Return(quiz, nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(&entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10},
	}, nil)

	// Act
	_, err := svc.SubmitQuiz(42, 5, nil)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Заблокированный квиз нельзя сдавать")
}

func TestSubmitQuiz_AlreadyCompleted(t *testing.T) {
	// Arrange
	svc, progressionRepo, _, quizRepo, _ := newProgressionServiceForTest("")
	quiz := &entity.Quiz{ID: 10, CategoryID: 1, Sequence: 1}
	quizRepo.On("GetWithQuestions", uint(10)).Return(quiz, nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(&entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10},
		CompletedQuizzes: entity.CompletedQuizList{
			{QuizID: 10, Score: 100, Completed: true},
		},
	}, nil)

	// Act
	_, err := svc.SubmitQuiz(42, 10, nil)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Пройденный на 100% квиз пересдать нельзя")
}

func TestSubmitQuiz_PartialScoreDoesNotUnlock(t *testing.T) {
	// Arrange
	svc, progressionRepo, _, quizRepo, _ := newProgressionServiceForTest("")
	quiz := &entity.Quiz{
		ID: 10, CategoryID: 1, Sequence: 1,
		Questions: []entity.Question{
			{ID: 1, CorrectAnswers: entity.LocalizedTextList{{LanguageID: 1, Value: "да"}}},
			{ID: 2, CorrectAnswers: entity.LocalizedTextList{{LanguageID: 1, Value: "да"}}},
		},
	}
	progression := &entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10},
	}
	quizRepo.On("GetWithQuestions", uint(10)).Return(quiz, nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(progression, nil)
	progressionRepo.On("Update", progression).Return(nil)

	// Act
	result, err := svc.SubmitQuiz(42, 10, []AnswerSubmission{
		{QuestionID: 1, Answer: "да"},
		{QuestionID: 2, Answer: "нет"},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.False(t, result.IsPerfectScore)
	assert.Equal(t, entity.UintList{10}, progression.UnlockedQuizzes, "Неидеальный результат ничего не открывает")
	record, ok := progression.CompletedQuizzes.Find(10)
	require.True(t, ok, "Результат должен быть записан")
	assert.False(t, record.Completed)
}

func TestSubmitQuiz_PerfectScoreUnlocksNextQuiz(t *testing.T) {
	// Arrange
	svc, progressionRepo, _, quizRepo, _ := newProgressionServiceForTest("")
	quiz := &entity.Quiz{
		ID: 10, CategoryID: 1, Sequence: 1,
		Questions: []entity.Question{
			{ID: 1, CorrectAnswers: entity.LocalizedTextList{{LanguageID: 1, Value: "да"}}},
		},
	}
	progression := &entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10},
	}
	quizRepo.On("GetWithQuestions", uint(10)).Return(quiz, nil)
	quizRepo.On("ListByCategory", uint(1)).Return(categoryQuizzes(1, 10, 11, 12), nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(progression, nil)
	progressionRepo.On("Update", progression).Return(nil)

	// Act
	result, err := svc.SubmitQuiz(42, 10, perfectAnswers(quiz))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsPerfectScore)
	assert.False(t, result.CategoryCompleted)
	assert.True(t, progression.UnlockedQuizzes.Contains(11), "Следующий по sequence квиз должен открыться")
	assert.False(t, progression.UnlockedQuizzes.Contains(12), "Квиз через один открываться не должен")
	require.NotNil(t, progression.CurrentQuizID)
	assert.Equal(t, uint(11), *progression.CurrentQuizID)
}

func TestSubmitQuiz_LastQuizCompletesCategoryAndAttachesDraw(t *testing.T) {
	// Arrange: win_gated политика, последний квиз категории
	svc, progressionRepo, _, quizRepo, drawRepo := newProgressionServiceForTest(config.AdvancementPolicyWinGated)
	quiz := &entity.Quiz{
		ID: 12, CategoryID: 1, Sequence: 3,
		Questions: []entity.Question{
			{ID: 1, CorrectAnswers: entity.LocalizedTextList{{LanguageID: 1, Value: "да"}}},
		},
	}
	progression := &entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10, 11, 12},
	}
	draw := entity.LuckyDraw{
		ID:            7,
		CategoryID:    1,
		Name:          "Розыгрыш Умры",
		ScheduledDate: time.Now().AddDate(0, 0, 10),
		Status:        entity.LuckyDrawStatusScheduled,
	}
	quizRepo.On("GetWithQuestions", uint(12)).Return(quiz, nil)
	quizRepo.On("ListByCategory", uint(1)).Return(categoryQuizzes(1, 10, 11, 12), nil)
	drawRepo.On("ListScheduledByCategory", uint(1)).Return([]entity.LuckyDraw{draw}, nil)
	drawRepo.On("Update", mock.AnythingOfType("*entity.LuckyDraw")).Return(nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(progression, nil)
	progressionRepo.On("Update", progression).Return(nil)

	// Act
	result, err := svc.SubmitQuiz(42, 12, perfectAnswers(quiz))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.CategoryCompleted)
	require.NotNil(t, result.AttachedDraw)
	assert.Equal(t, uint(7), result.AttachedDraw.ID)
	assert.True(t, result.AttachedDraw.EligibleUsers.Contains(42), "Пользователь должен попасть в пул розыгрыша")

	completion, ok := progression.CategoryCompletions.Find(1)
	require.True(t, ok, "Должна появиться запись о прохождении категории")
	assert.True(t, completion.LuckyDrawParticipated)

	participation, ok := progression.DrawParticipations.Find(7)
	require.True(t, ok, "Должна появиться запись об участии")
	assert.True(t, participation.Eligible)
	assert.False(t, participation.Won)

	// win_gated: следующая категория не открывается
	assert.False(t, progression.UnlockedCategories.Contains(2))
	assert.Nil(t, progression.CurrentQuizID, "Текущий квиз сбрасывается до победы в розыгрыше")
}

func TestSubmitQuiz_AutoPolicyAdvancesToNextCategory(t *testing.T) {
	// Arrange: auto политика, последний квиз категории
	svc, progressionRepo, categoryRepo, quizRepo, drawRepo := newProgressionServiceForTest(config.AdvancementPolicyAuto)
	quiz := &entity.Quiz{
		ID: 10, CategoryID: 1, Sequence: 1,
		Questions: []entity.Question{
			{ID: 1, CorrectAnswers: entity.LocalizedTextList{{LanguageID: 1, Value: "да"}}},
		},
	}
	progression := &entity.Progression{
		UserID:             42,
		UnlockedCategories: entity.UintList{1},
		UnlockedQuizzes:    entity.UintList{10},
	}
	category1 := &entity.Category{ID: 1, CreatedAt: time.Now().Add(-2 * time.Hour)}
	category2 := &entity.Category{ID: 2, CreatedAt: time.Now().Add(-time.Hour)}

	quizRepo.On("GetWithQuestions", uint(10)).Return(quiz, nil)
	quizRepo.On("ListByCategory", uint(1)).Return(categoryQuizzes(1, 10), nil)
	quizRepo.On("ListByCategory", uint(2)).Return(categoryQuizzes(2, 20, 21), nil)
	drawRepo.On("ListScheduledByCategory", uint(1)).Return([]entity.LuckyDraw{}, nil)
	categoryRepo.On("GetByID", uint(1)).Return(category1, nil)
	categoryRepo.On("NextAfter", category1).Return(category2, nil)
	progressionRepo.On("GetByUserID", uint(42)).Return(progression, nil)
	progressionRepo.On("Update", progression).Return(nil)

	// Act
	result, err := svc.SubmitQuiz(42, 10, perfectAnswers(quiz))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.CategoryCompleted)
	assert.True(t, progression.UnlockedCategories.Contains(2), "auto политика открывает следующую категорию")
	assert.True(t, progression.UnlockedQuizzes.Contains(20), "Открывается первый квиз следующей категории")
	require.NotNil(t, progression.CurrentQuizID)
	assert.Equal(t, uint(20), *progression.CurrentQuizID)
}

func TestUnlockNextCategoryForWinner(t *testing.T) {
	// Arrange
	svc, _, categoryRepo, quizRepo, _ := newProgressionServiceForTest("")
	progression := &entity.Progression{
		UserID:             42,
		UnlockedCategories: entity.UintList{1},
	}
	category1 := &entity.Category{ID: 1, CreatedAt: time.Now().Add(-2 * time.Hour)}
	category2 := &entity.Category{ID: 2, CreatedAt: time.Now().Add(-time.Hour)}
	categoryRepo.On("GetByID", uint(1)).Return(category1, nil)
	categoryRepo.On("NextAfter", category1).Return(category2, nil)
	quizRepo.On("ListByCategory", uint(2)).Return(categoryQuizzes(2, 20), nil)

	// Act
	err := svc.UnlockNextCategoryForWinner(progression, 1)

	// Assert
	require.NoError(t, err)
	assert.True(t, progression.UnlockedCategories.Contains(2))
	assert.True(t, progression.UnlockedQuizzes.Contains(20))
	require.NotNil(t, progression.CurrentCategoryID)
	assert.Equal(t, uint(2), *progression.CurrentCategoryID)
}

func TestUnlockNextCategoryForWinner_AlreadyUnlocked(t *testing.T) {
	// Arrange: вторая категория уже открыта, перескакивать вперёд нельзя
	svc, _, categoryRepo, quizRepo, _ := newProgressionServiceForTest("")
	current := uintPtr(2)
	progression := &entity.Progression{
		UserID:             42,
		UnlockedCategories: entity.UintList{1, 2},
		CurrentCategoryID:  current,
	}
	category1 := &entity.Category{ID: 1, CreatedAt: time.Now().Add(-2 * time.Hour)}
	category2 := &entity.Category{ID: 2, CreatedAt: time.Now().Add(-time.Hour)}
	categoryRepo.On("GetByID", uint(1)).Return(category1, nil)
	categoryRepo.On("NextAfter", category1).Return(category2, nil)
	quizRepo.On("ListByCategory", uint(2)).Return(categoryQuizzes(2, 20), nil)

	// Act
	err := svc.UnlockNextCategoryForWinner(progression, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.UintList{1, 2}, progression.UnlockedCategories, "Состав открытых категорий не меняется")
	assert.Equal(t, current, progression.CurrentCategoryID, "Указатели не трогаются")
}

func TestUnlockNextCategoryForWinner_SkipsEmptyCategory(t *testing.T) {
	// Arrange: следующая категория без квизов, прогресс не двигается
	svc, _, categoryRepo, quizRepo, _ := newProgressionServiceForTest("")
	current := uintPtr(1)
	progression := &entity.Progression{
		UserID:             42,
		UnlockedCategories: entity.UintList{1},
		CurrentCategoryID:  current,
	}
	category1 := &entity.Category{ID: 1, CreatedAt: time.Now().Add(-2 * time.Hour)}
	category2 := &entity.Category{ID: 2, CreatedAt: time.Now().Add(-time.Hour)}
	categoryRepo.On("GetByID", uint(1)).Return(category1, nil)
	categoryRepo.On("NextAfter", category1).Return(category2, nil)
	quizRepo.On("ListByCategory", uint(2)).Return([]entity.Quiz{}, nil)

	// Act
	err := svc.UnlockNextCategoryForWinner(progression, 1)

	// Assert
	require.NoError(t, err)
	assert.False(t, progression.UnlockedCategories.Contains(2), "Пустая категория не открывается")
	assert.Equal(t, current, progression.CurrentCategoryID, "Указатель категории не меняется")
	assert.Nil(t, progression.CurrentQuizID)
}

func TestGetQuizForUser_Locked(t *testing.T) {
	// Arrange
	svc, progressionRepo, _, quizRepo, _ := newProgressionServiceForTest("")
	progressionRepo.On("GetByUserID", uint(42)).Return(&entity.Progression{
		UserID:          42,
		UnlockedQuizzes: entity.UintList{10},
	}, nil)
	quizRepo.On("GetWithQuestions", uint(11)).Return(&entity.Quiz{ID: 11, CategoryID: 1}, nil)

	// Act
	_, err := svc.GetQuizForUser(42, 11)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
