package service

import (
	"fmt"
	"log"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// QuizService управляет каталогом квизов
type QuizService struct {
	quizRepo     repository.QuizRepository
	categoryRepo repository.CategoryRepository
}

// NewQuizService создает новый сервис квизов
func NewQuizService(quizRepo repository.QuizRepository, categoryRepo repository.CategoryRepository) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateQuiz создает квиз, назначая ему следующий sequence внутри
// категории. Название должно быть уникальным в категории по каждому языку.
func (s *QuizService) CreateQuiz(quiz *entity.Quiz) error {
	if len(quiz.Title) == 0 {
		return fmt.Errorf("%w: quiz title is required", apperrors.ErrValidation)
	}

	if _, err := s.categoryRepo.GetByID(quiz.CategoryID); err != nil {
		return err
	}

	if err := s.checkTitleUnique(quiz); err != nil {
		return err
	}

	maxSequence, err := s.quizRepo.MaxSequence(quiz.CategoryID)
	if err != nil {
		return err
	}
	quiz.Sequence = maxSequence + 1

	if err := s.quizRepo.Create(quiz); err != nil {
		return err
	}
	log.Printf("[QuizService] Создан квиз %d в категории %d (sequence %d)",
		quiz.ID, quiz.CategoryID, quiz.Sequence)
	return nil
}

// GetQuiz возвращает квиз по ID
func (s *QuizService) GetQuiz(id uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(id)
}

// GetQuizWithQuestions возвращает квиз вместе с вопросами
func (s *QuizService) GetQuizWithQuestions(id uint) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(id)
}

// ListQuizzesByCategory возвращает квизы категории в порядке sequence
func (s *QuizService) ListQuizzesByCategory(categoryID uint) ([]entity.Quiz, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}
	return s.quizRepo.ListByCategory(categoryID)
}

// UpdateQuiz обновляет квиз. Sequence при обновлении не меняется.
func (s *QuizService) UpdateQuiz(quiz *entity.Quiz) error {
	existing, err := s.quizRepo.GetByID(quiz.ID)
	if err != nil {
		return err
	}
	quiz.Sequence = existing.Sequence
	quiz.CategoryID = existing.CategoryID

	if err := s.checkTitleUnique(quiz); err != nil {
		return err
	}
	return s.quizRepo.Update(quiz)
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (s *QuizService) DeleteQuiz(id uint) error {
	if err := s.quizRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("[QuizService] Удален квиз %d", id)
	return nil
}

// checkTitleUnique проверяет, что название квиза не занято соседями по
// категории ни на одном языке
func (s *QuizService) checkTitleUnique(quiz *entity.Quiz) error {
	siblings, err := s.quizRepo.ListByCategory(quiz.CategoryID)
	if err != nil {
		return err
	}
	for _, other := range siblings {
		if other.ID == quiz.ID {
			continue
		}
		for _, title := range quiz.Title {
			if other.Title.Contains(title.LanguageID, title.Value) {
				return fmt.Errorf("%w: quiz title %q already used by quiz #%d in category #%d",
					apperrors.ErrConflict, title.Value, other.ID, quiz.CategoryID)
			}
		}
	}
	return nil
}
