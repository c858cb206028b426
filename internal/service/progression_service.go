package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/testofislamworld/islamic-quiz-backend/internal/config"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

const availableQuizzesCacheTTL = 5 * time.Minute

// ProgressionService управляет прогрессом пользователей: инициализация,
// сдача квизов, движок разблокировки категорий и квизов.
type ProgressionService struct {
	progressionRepo repository.ProgressionRepository
	categoryRepo    repository.CategoryRepository
	quizRepo        repository.QuizRepository
	drawRepo        repository.LuckyDrawRepository
	cacheRepo       repository.CacheRepository

	// advancementPolicy определяет, как открывается следующая категория:
	// win_gated - только через победу в розыгрыше, auto - сразу после
	// прохождения всех квизов категории.
	advancementPolicy string
}

// NewProgressionService создает новый сервис прогресса
func NewProgressionService(
	progressionRepo repository.ProgressionRepository,
	categoryRepo repository.CategoryRepository,
	quizRepo repository.QuizRepository,
	drawRepo repository.LuckyDrawRepository,
	cacheRepo repository.CacheRepository,
	advancementPolicy string,
) *ProgressionService {
	if advancementPolicy == "" {
		advancementPolicy = config.AdvancementPolicyWinGated
	}
	return &ProgressionService{
		progressionRepo:   progressionRepo,
		categoryRepo:      categoryRepo,
		quizRepo:          quizRepo,
		drawRepo:          drawRepo,
		cacheRepo:         cacheRepo,
		advancementPolicy: advancementPolicy,
	}
}

// QuizAvailability - один квиз в списке доступных с аннотацией состояния
type QuizAvailability struct {
	Quiz      entity.Quiz
	Unlocked  bool
	Completed bool
	Score     int
}

// CategoryAvailability - одна категория с аннотацией состояния
type CategoryAvailability struct {
	Category    entity.Category
	Unlocked    bool
	Completed   bool
	FirstQuizID *uint
}

// AvailabilityOverview - полная картина доступности для пользователя
type AvailabilityOverview struct {
	Quizzes           []QuizAvailability
	CurrentCategoryID *uint
	CurrentQuizID     *uint
}

// SubmitResult - итог сдачи квиза
type SubmitResult struct {
	Score          int
	CorrectAnswers int
	TotalQuestions int
	IsPerfectScore bool
	// CategoryCompleted выставляется, когда этой сдачей закрыт последний квиз категории
	CategoryCompleted bool
	// AttachedDraw - розыгрыш, к которому пользователь прикреплён при закрытии категории
	AttachedDraw *entity.LuckyDraw
}

// InitProgression инициализирует прогресс пользователя: открывает первую
// категорию и её первый квиз. Повторная инициализация отклоняется.
func (s *ProgressionService) InitProgression(userID uint) (*entity.Progression, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	firstCategory, err := s.categoryRepo.First()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no categories available", apperrors.ErrNotFound)
		}
		return nil, err
	}

	quizzes, err := s.quizRepo.ListByCategory(firstCategory.ID)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, fmt.Errorf("%w: category #%d has no quizzes", apperrors.ErrNotFound, firstCategory.ID)
	}
	firstQuiz := quizzes[0]

	categoryID := firstCategory.ID
	quizID := firstQuiz.ID
	progression := &entity.Progression{
		UserID:              userID,
		UnlockedCategories:  entity.UintList{categoryID},
		UnlockedQuizzes:     entity.UintList{quizID},
		CurrentCategoryID:   &categoryID,
		CurrentQuizID:       &quizID,
		CompletedQuizzes:    entity.CompletedQuizList{},
		CategoryCompletions: entity.CategoryCompletionList{},
		DrawParticipations:  entity.ParticipationList{},
	}

	if err := s.progressionRepo.Create(progression); err != nil {
		return nil, err
	}

	log.Printf("[ProgressionService] Инициализирован прогресс пользователя %d: категория %d, квиз %d",
		userID, categoryID, quizID)
	return progression, nil
}

// ResetProgression удаляет прогресс пользователя и инициализирует заново
func (s *ProgressionService) ResetProgression(userID uint) (*entity.Progression, error) {
	err := s.progressionRepo.DeleteByUserID(userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	s.invalidateAvailabilityCache(userID)
	log.Printf("[ProgressionService] Сброшен прогресс пользователя %d", userID)
	return s.InitProgression(userID)
}

// GetProgression возвращает прогресс пользователя
func (s *ProgressionService) GetProgression(userID uint) (*entity.Progression, error) {
	return s.progressionRepo.GetByUserID(userID)
}

// AvailableQuizzes возвращает все квизы с аннотацией
// заблокирован/открыт/пройден и текущими указателями пользователя.
// Результат кешируется, кеш сбрасывается при сдаче квиза и сбросе прогресса.
func (s *ProgressionService) AvailableQuizzes(userID uint) (*AvailabilityOverview, error) {
	cacheKey := fmt.Sprintf("progression:available:%d", userID)
	if s.cacheRepo != nil {
		var cached AvailabilityOverview
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.quizRepo.ListAllWithQuestions()
	if err != nil {
		return nil, err
	}

	overview := &AvailabilityOverview{
		CurrentCategoryID: progression.CurrentCategoryID,
		CurrentQuizID:     progression.CurrentQuizID,
	}
	for _, quiz := range quizzes {
		overview.Quizzes = append(overview.Quizzes, QuizAvailability{
			Quiz:      quiz,
			Unlocked:  progression.UnlockedQuizzes.Contains(quiz.ID),
			Completed: progression.HasCompletedQuiz(quiz.ID),
			Score:     progression.QuizScore(quiz.ID),
		})
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, overview, availableQuizzesCacheTTL); err != nil {
			log.Printf("[ProgressionService] Не удалось закешировать доступность пользователя %d: %v", userID, err)
		}
	}
	return overview, nil
}

// AvailableCategories возвращает категории с аннотацией
// заблокирована/открыта, признаком прохождения и первым квизом
func (s *ProgressionService) AvailableCategories(userID uint) ([]CategoryAvailability, error) {
	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, err
	}

	result := make([]CategoryAvailability, 0, len(categories))
	for _, category := range categories {
		availability := CategoryAvailability{
			Category:  category,
			Unlocked:  progression.UnlockedCategories.Contains(category.ID),
			Completed: progression.HasCompletedCategory(category.ID),
		}
		quizzes, err := s.quizRepo.ListByCategory(category.ID)
		if err != nil {
			return nil, err
		}
		if len(quizzes) > 0 {
			firstID := quizzes[0].ID
			availability.FirstQuizID = &firstID
		}
		result = append(result, availability)
	}
	return result, nil
}

// GetQuizForUser возвращает квиз с вопросами, если он открыт пользователю.
// Правильные ответы вычищаются на уровне DTO.
func (s *ProgressionService) GetQuizForUser(userID, quizID uint) (*entity.Quiz, error) {
	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	if !progression.UnlockedQuizzes.Contains(quizID) {
		return nil, fmt.Errorf("%w: quiz #%d is locked for user #%d", apperrors.ErrForbidden, quizID, userID)
	}
	return quiz, nil
}

// SubmitQuiz принимает ответы пользователя, проверяет их и при идеальном
// результате запускает движок разблокировки
func (s *ProgressionService) SubmitQuiz(userID, quizID uint, answers []AnswerSubmission) (*SubmitResult, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if !progression.UnlockedQuizzes.Contains(quizID) {
		return nil, fmt.Errorf("%w: quiz #%d is locked for user #%d", apperrors.ErrForbidden, quizID, userID)
	}

	// Уже пройденный на 100% квиз пересдать нельзя
	if progression.HasCompletedQuiz(quizID) {
		return nil, fmt.Errorf("%w: quiz #%d already completed with perfect score", apperrors.ErrConflict, quizID)
	}

	grade := GradeQuiz(quiz, answers)

	progression.CompletedQuizzes.Upsert(entity.CompletedQuiz{
		QuizID:      quizID,
		Score:       grade.Score,
		Completed:   grade.IsPerfectScore,
		CompletedAt: time.Now(),
	})

	result := &SubmitResult{
		Score:          grade.Score,
		CorrectAnswers: grade.CorrectAnswers,
		TotalQuestions: grade.TotalQuestions,
		IsPerfectScore: grade.IsPerfectScore,
	}

	if grade.IsPerfectScore {
		if err := s.advance(progression, quiz, result); err != nil {
			return nil, err
		}
	}

	if err := s.progressionRepo.Update(progression); err != nil {
		return nil, err
	}
	s.invalidateAvailabilityCache(userID)

	log.Printf("[ProgressionService] Пользователь %d сдал квиз %d: %d%% (%d/%d)",
		userID, quizID, grade.Score, grade.CorrectAnswers, grade.TotalQuestions)
	return result, nil
}

// advance - движок разблокировки после идеального прохождения квиза.
// Открывает следующий квиз категории, а по завершении категории фиксирует
// факт прохождения и прикрепляет пользователя к ближайшему розыгрышу.
func (s *ProgressionService) advance(progression *entity.Progression, quiz *entity.Quiz, result *SubmitResult) error {
	quizzes, err := s.quizRepo.ListByCategory(quiz.CategoryID)
	if err != nil {
		return err
	}

	// Ищем следующий квиз категории по sequence
	var next *entity.Quiz
	for i := range quizzes {
		if quizzes[i].Sequence > quiz.Sequence {
			next = &quizzes[i]
			break
		}
	}

	if next != nil {
		progression.UnlockedQuizzes.Add(next.ID)
		nextID := next.ID
		categoryID := quiz.CategoryID
		progression.CurrentQuizID = &nextID
		progression.CurrentCategoryID = &categoryID
		return nil
	}

	// Категория пройдена целиком
	result.CategoryCompleted = true
	if !progression.HasCompletedCategory(quiz.CategoryID) {
		progression.CategoryCompletions = append(progression.CategoryCompletions, entity.CategoryCompletion{
			CategoryID:  quiz.CategoryID,
			CompletedAt: time.Now(),
		})
	}

	if draw, err := s.attachToDraw(progression, quiz.CategoryID); err != nil {
		log.Printf("[ProgressionService] Не удалось прикрепить пользователя %d к розыгрышу категории %d: %v",
			progression.UserID, quiz.CategoryID, err)
	} else if draw != nil {
		result.AttachedDraw = draw
	}

	if s.advancementPolicy == config.AdvancementPolicyAuto {
		return s.advanceToNextCategory(progression, quiz.CategoryID)
	}

	// win_gated: следующая категория откроется только через победу в розыгрыше
	progression.CurrentQuizID = nil
	return nil
}

// attachToDraw прикрепляет пользователя к ближайшему будущему
// запланированному розыгрышу категории
func (s *ProgressionService) attachToDraw(progression *entity.Progression, categoryID uint) (*entity.LuckyDraw, error) {
	draws, err := s.drawRepo.ListScheduledByCategory(categoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range draws {
		if draws[i].ScheduledDate.Before(now) {
			continue
		}
		draw := &draws[i]

		if _, ok := progression.DrawParticipations.Find(draw.ID); !ok {
			progression.DrawParticipations = append(progression.DrawParticipations, entity.Participation{
				LuckyDrawID: draw.ID,
				CategoryID:  categoryID,
				Eligible:    true,
			})
		}
		if completion, ok := progression.CategoryCompletions.Find(categoryID); ok {
			completion.LuckyDrawParticipated = true
		}

		if draw.EligibleUsers.Add(progression.UserID) {
			if err := s.drawRepo.Update(draw); err != nil {
				return nil, err
			}
		}
		return draw, nil
	}
	return nil, nil
}

// advanceToNextCategory (политика auto) открывает первую следующую
// категорию, в которой есть квизы
func (s *ProgressionService) advanceToNextCategory(progression *entity.Progression, categoryID uint) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}

	current := category
	for {
		next, err := s.categoryRepo.NextAfter(current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Дальше категорий нет
				progression.CurrentQuizID = nil
				return nil
			}
			return err
		}

		quizzes, err := s.quizRepo.ListByCategory(next.ID)
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			current = next
			continue
		}

		progression.UnlockedCategories.Add(next.ID)
		progression.UnlockedQuizzes.Add(quizzes[0].ID)
		nextCategoryID := next.ID
		nextQuizID := quizzes[0].ID
		progression.CurrentCategoryID = &nextCategoryID
		progression.CurrentQuizID = &nextQuizID
		return nil
	}
}

// UnlockNextCategoryForWinner открывает победителю розыгрыша следующую
// категорию после выигранной. Уже открытая категория не перескакивается,
// категория без квизов молча пропускается без изменений прогресса.
func (s *ProgressionService) UnlockNextCategoryForWinner(progression *entity.Progression, wonCategoryID uint) error {
	category, err := s.categoryRepo.GetByID(wonCategoryID)
	if err != nil {
		return err
	}

	next, err := s.categoryRepo.NextAfter(category)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	quizzes, err := s.quizRepo.ListByCategory(next.ID)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		// Следующей категории нечего играть, прогресс не двигаем
		return nil
	}

	if !progression.UnlockedCategories.Add(next.ID) {
		// Категория уже открыта, указатели не трогаем
		return nil
	}

	nextCategoryID := next.ID
	firstQuizID := quizzes[0].ID
	progression.CurrentCategoryID = &nextCategoryID
	progression.UnlockedQuizzes.Add(firstQuizID)
	progression.CurrentQuizID = &firstQuizID

	s.invalidateAvailabilityCache(progression.UserID)
	return nil
}

func (s *ProgressionService) invalidateAvailabilityCache(userID uint) {
	if s.cacheRepo == nil {
		return
	}
	key := fmt.Sprintf("progression:available:%d", userID)
	if err := s.cacheRepo.Delete(key); err != nil {
		log.Printf("[ProgressionService] Не удалось сбросить кеш доступности пользователя %d: %v", userID, err)
	}
}
