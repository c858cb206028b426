package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

func textList(languageID uint, value string) entity.LocalizedTextList {
	return entity.LocalizedTextList{{LanguageID: languageID, Value: value}}
}

func TestCreateCategory_RejectsEmptyName(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo)

	// Act
	err := svc.CreateCategory(&entity.Category{})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Категория без имени должна отклоняться")
	categoryRepo.AssertNotCalled(t, "Create")
}

func TestCreateCategory_RejectsDuplicateNamePerLanguage(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("List").Return([]entity.Category{
		{ID: 1, Name: textList(1, "Пророки")},
	}, nil)
	svc := NewCategoryService(categoryRepo)

	// Act
	err := svc.CreateCategory(&entity.Category{Name: textList(1, "Пророки")})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Имя, занятое в том же языке, должно давать конфликт")
	categoryRepo.AssertNotCalled(t, "Create")
}

func TestCreateCategory_AllowsSameNameInDifferentLanguage(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("List").Return([]entity.Category{
		{ID: 1, Name: textList(1, "Prophets")},
	}, nil)
	categoryRepo.On("Create", mock.AnythingOfType("*entity.Category")).Return(nil)
	svc := NewCategoryService(categoryRepo)

	// Act
	err := svc.CreateCategory(&entity.Category{Name: textList(2, "Prophets")})

	// Assert
	require.NoError(t, err, "То же имя в другом языке не конфликт")
	categoryRepo.AssertExpectations(t)
}

func TestCreateQuiz_AssignsNextSequence(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	quizRepo := new(MockQuizRepository)
	categoryRepo.On("GetByID", uint(7)).Return(&entity.Category{ID: 7}, nil)
	quizRepo.On("ListByCategory", uint(7)).Return([]entity.Quiz{
		{ID: 1, CategoryID: 7, Title: textList(1, "Намаз"), Sequence: 1},
		{ID: 2, CategoryID: 7, Title: textList(1, "Пост"), Sequence: 2},
	}, nil)
	quizRepo.On("MaxSequence", uint(7)).Return(2, nil)
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)
	svc := NewQuizService(quizRepo, categoryRepo)

	quiz := &entity.Quiz{CategoryID: 7, Title: textList(1, "Закят")}

	// Act
	err := svc.CreateQuiz(quiz)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, quiz.Sequence, "Новому квизу назначается max(sequence)+1")
	quizRepo.AssertExpectations(t)
}

func TestCreateQuiz_RejectsDuplicateTitleInCategory(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	quizRepo := new(MockQuizRepository)
	categoryRepo.On("GetByID", uint(7)).Return(&entity.Category{ID: 7}, nil)
	quizRepo.On("ListByCategory", uint(7)).Return([]entity.Quiz{
		{ID: 1, CategoryID: 7, Title: textList(1, "Намаз"), Sequence: 1},
	}, nil)
	svc := NewQuizService(quizRepo, categoryRepo)

	// Act
	err := svc.CreateQuiz(&entity.Quiz{CategoryID: 7, Title: textList(1, "Намаз")})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Повтор названия в категории должен давать конфликт")
	quizRepo.AssertNotCalled(t, "Create")
}

func TestCreateQuiz_RejectsUnknownCategory(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	quizRepo := new(MockQuizRepository)
	categoryRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)
	svc := NewQuizService(quizRepo, categoryRepo)

	// Act
	err := svc.CreateQuiz(&entity.Quiz{CategoryID: 99, Title: textList(1, "Намаз")})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateQuiz_PreservesSequenceAndCategory(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	quizRepo := new(MockQuizRepository)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, CategoryID: 7, Sequence: 3}, nil)
	quizRepo.On("ListByCategory", uint(7)).Return([]entity.Quiz{}, nil)
	quizRepo.On("Update", mock.AnythingOfType("*entity.Quiz")).Return(nil)
	svc := NewQuizService(quizRepo, categoryRepo)

	quiz := &entity.Quiz{ID: 5, CategoryID: 1, Sequence: 99, Title: textList(1, "Обновлённый")}

	// Act
	err := svc.UpdateQuiz(quiz)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, quiz.Sequence, "Sequence не должен меняться при обновлении")
	assert.Equal(t, uint(7), quiz.CategoryID, "Категория не должна меняться при обновлении")
}
