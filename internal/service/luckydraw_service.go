package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

// Окно победной серии: победы с разрывом не более 30 дней считаются подряд
const winningStreakWindow = 30 * 24 * time.Hour

// LuckyDrawService управляет жизненным циклом розыгрышей: создание,
// пул участников, проведение, статистика.
type LuckyDrawService struct {
	drawRepo        repository.LuckyDrawRepository
	progressionRepo repository.ProgressionRepository
	categoryRepo    repository.CategoryRepository
	quizRepo        repository.QuizRepository
	cacheRepo       repository.CacheRepository
	userDirectory   repository.UserDirectory

	progressionService *ProgressionService
	emailService       EmailService

	// rng подменяется в тестах для детерминированного выбора победителей
	rng *rand.Rand
}

// NewLuckyDrawService создает новый сервис розыгрышей
func NewLuckyDrawService(
	drawRepo repository.LuckyDrawRepository,
	progressionRepo repository.ProgressionRepository,
	categoryRepo repository.CategoryRepository,
	quizRepo repository.QuizRepository,
	cacheRepo repository.CacheRepository,
	userDirectory repository.UserDirectory,
	progressionService *ProgressionService,
	emailService EmailService,
) *LuckyDrawService {
	return &LuckyDrawService{
		drawRepo:           drawRepo,
		progressionRepo:    progressionRepo,
		categoryRepo:       categoryRepo,
		quizRepo:           quizRepo,
		cacheRepo:          cacheRepo,
		userDirectory:      userDirectory,
		progressionService: progressionService,
		emailService:       emailService,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateDrawInput - параметры создания розыгрыша
type CreateDrawInput struct {
	CategoryID    uint
	Name          string
	Description   string
	ScheduledDate time.Time
	Prizes        entity.PrizeList
}

// RunSummary - итог одного прохода планировщика по назревшим розыгрышам
type RunSummary struct {
	Processed int      `json:"processed"`
	Executed  int      `json:"executed"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
}

// DrawStats - сводная статистика по розыгрышам
type DrawStats struct {
	TotalDraws     int            `json:"total_draws"`
	ByStatus       map[string]int `json:"by_status"`
	TotalWinners   int            `json:"total_winners"`
	ByCategory     map[uint]int   `json:"winners_by_category"`
	MonthlyWinners map[string]int `json:"monthly_winners,omitempty"`
}

// WinnerStat - агрегат по одному победителю
type WinnerStat struct {
	UserID         uint      `json:"user_id"`
	Wins           int       `json:"wins"`
	WinningStreak  int       `json:"winning_streak"`
	AvgDaysBetween float64   `json:"avg_days_between_wins"`
	LastWinAt      time.Time `json:"last_win_at"`
}

// ParticipationRecord - участие пользователя в розыгрыше с данными розыгрыша
type ParticipationRecord struct {
	Participation entity.Participation `json:"participation"`
	Draw          *entity.LuckyDraw    `json:"draw,omitempty"`
}

// CreateDraw создает розыгрыш и сразу считает начальный пул участников.
// В категории может быть только один запланированный розыгрыш.
func (s *LuckyDrawService) CreateDraw(input CreateDrawInput) (*entity.LuckyDraw, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: draw name is required", apperrors.ErrValidation)
	}
	if len(input.Prizes) == 0 {
		return nil, fmt.Errorf("%w: at least one prize is required", apperrors.ErrValidation)
	}
	for _, prize := range input.Prizes {
		if prize.Name == "" || prize.Quantity < 1 {
			return nil, fmt.Errorf("%w: each prize needs a name and quantity >= 1", apperrors.ErrValidation)
		}
	}
	if input.ScheduledDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled date must be in the future", apperrors.ErrValidation)
	}

	if _, err := s.categoryRepo.GetByID(input.CategoryID); err != nil {
		return nil, err
	}

	scheduled, err := s.drawRepo.ListScheduledByCategory(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if len(scheduled) > 0 {
		return nil, fmt.Errorf("%w: category #%d already has a scheduled draw (#%d)",
			apperrors.ErrConflict, input.CategoryID, scheduled[0].ID)
	}

	draw := &entity.LuckyDraw{
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Description:   input.Description,
		ScheduledDate: input.ScheduledDate,
		Prizes:        input.Prizes,
		EligibleUsers: entity.UintList{},
		Winners:       entity.WinnerList{},
		Status:        entity.LuckyDrawStatusScheduled,
	}

	if err := s.drawRepo.Create(draw); err != nil {
		return nil, err
	}

	// Пользователи, уже прошедшие категорию, попадают в пул сразу
	if err := s.refreshEligiblePool(draw); err != nil {
		log.Printf("[LuckyDrawService] Не удалось посчитать начальный пул розыгрыша %d: %v", draw.ID, err)
	}

	log.Printf("[LuckyDrawService] Создан розыгрыш %d (%s) для категории %d на %s, участников: %d",
		draw.ID, draw.Name, draw.CategoryID, draw.ScheduledDate.Format("2006-01-02"), len(draw.EligibleUsers))
	return draw, nil
}

// GetDraw возвращает розыгрыш по ID
func (s *LuckyDrawService) GetDraw(id uint) (*entity.LuckyDraw, error) {
	return s.drawRepo.GetByID(id)
}

// ListDraws возвращает розыгрыши по фильтрам
func (s *LuckyDrawService) ListDraws(filters repository.LuckyDrawFilters) ([]entity.LuckyDraw, error) {
	return s.drawRepo.List(filters)
}

// UpdateDraw обновляет описание и призы розыгрыша. Завершённый или
// отменённый розыгрыш менять нельзя.
func (s *LuckyDrawService) UpdateDraw(id uint, name, description string, prizes entity.PrizeList) (*entity.LuckyDraw, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !draw.IsScheduled() {
		return nil, fmt.Errorf("%w: draw #%d is %s and cannot be updated", apperrors.ErrConflict, id, draw.Status)
	}

	if name != "" {
		draw.Name = name
	}
	if description != "" {
		draw.Description = description
	}
	if len(prizes) > 0 {
		for _, prize := range prizes {
			if prize.Name == "" || prize.Quantity < 1 {
				return nil, fmt.Errorf("%w: each prize needs a name and quantity >= 1", apperrors.ErrValidation)
			}
		}
		draw.Prizes = prizes
	}

	if err := s.drawRepo.Update(draw); err != nil {
		return nil, err
	}
	return draw, nil
}

// DeleteDraw удаляет розыгрыш
func (s *LuckyDrawService) DeleteDraw(id uint) error {
	return s.drawRepo.Delete(id)
}

// CancelDraw отменяет запланированный розыгрыш. Без указанной причины
// сохраняется стандартная формулировка.
func (s *LuckyDrawService) CancelDraw(id uint, reason string) (*entity.LuckyDraw, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !draw.IsScheduled() {
		return nil, fmt.Errorf("%w: draw #%d is %s and cannot be cancelled", apperrors.ErrConflict, id, draw.Status)
	}
	if reason == "" {
		reason = "Cancelled by administrator"
	}

	draw.Status = entity.LuckyDrawStatusCancelled
	draw.CancellationReason = reason
	if err := s.drawRepo.Update(draw); err != nil {
		return nil, err
	}

	log.Printf("[LuckyDrawService] Розыгрыш %d отменён: %s", id, reason)
	return draw, nil
}

// RescheduleDraw переносит запланированный розыгрыш на новую дату.
// Завершённый или отменённый розыгрыш переносить нельзя.
func (s *LuckyDrawService) RescheduleDraw(id uint, newDate time.Time) (*entity.LuckyDraw, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !draw.IsScheduled() {
		return nil, fmt.Errorf("%w: draw #%d is %s and cannot be rescheduled", apperrors.ErrConflict, id, draw.Status)
	}
	if newDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: new date must be in the future", apperrors.ErrValidation)
	}

	draw.ScheduledDate = newDate
	if err := s.drawRepo.Update(draw); err != nil {
		return nil, err
	}

	log.Printf("[LuckyDrawService] Розыгрыш %d перенесён на %s", id, newDate.Format("2006-01-02"))
	return draw, nil
}

// EligibleUsers возвращает актуальный пул участников розыгрыша
func (s *LuckyDrawService) EligibleUsers(id uint) (entity.UintList, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return draw.EligibleUsers, nil
}

// RefreshEligibleUsers полностью пересчитывает пул участников розыгрыша
func (s *LuckyDrawService) RefreshEligibleUsers(id uint) (*entity.LuckyDraw, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshEligiblePool(draw); err != nil {
		return nil, err
	}
	return draw, nil
}

// refreshEligiblePool пересобирает пул: участвует каждый пользователь,
// прошедший все квизы категории на 100% и ещё не выигравший этот розыгрыш.
// Пользователям без записи о прохождении категории запись дописывается.
func (s *LuckyDrawService) refreshEligiblePool(draw *entity.LuckyDraw) error {
	quizzes, err := s.quizRepo.ListByCategory(draw.CategoryID)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		draw.EligibleUsers = entity.UintList{}
		return s.drawRepo.Update(draw)
	}

	progressions, err := s.progressionRepo.ListAll()
	if err != nil {
		return err
	}

	pool := entity.UintList{}
	for i := range progressions {
		progression := &progressions[i]

		completedAll := true
		for _, quiz := range quizzes {
			if !progression.HasCompletedQuiz(quiz.ID) {
				completedAll = false
				break
			}
		}
		if !completedAll {
			continue
		}
		if draw.Winners.ContainsUser(progression.UserID) {
			continue
		}

		pool = append(pool, progression.UserID)

		// Квалифицировавшийся до создания розыгрыша пользователь мог не
		// получить запись о прохождении категории
		if !progression.HasCompletedCategory(draw.CategoryID) {
			progression.CategoryCompletions = append(progression.CategoryCompletions, entity.CategoryCompletion{
				CategoryID:            draw.CategoryID,
				CompletedAt:           time.Now(),
				LuckyDrawParticipated: true,
			})
			if err := s.progressionRepo.Update(progression); err != nil {
				log.Printf("[LuckyDrawService] Не удалось дописать прохождение категории пользователю %d: %v",
					progression.UserID, err)
			}
		}
	}

	draw.EligibleUsers = pool
	return s.drawRepo.Update(draw)
}

// ExecuteDraw проводит розыгрыш: равновероятно выбирает победителей без
// повторов, раздаёт призы, открывает победителям следующую категорию и
// переносит розыгрыш на месяц вперёд. Победители накапливаются, выбывшие
// из пула не участвуют в следующих проведениях.
func (s *LuckyDrawService) ExecuteDraw(ctx context.Context, id uint) (*entity.LuckyDraw, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if draw.IsCompleted() || draw.IsCancelled() {
		return nil, fmt.Errorf("%w: draw #%d is %s and cannot be executed", apperrors.ErrConflict, id, draw.Status)
	}

	pool := draw.EligibleUsers
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: draw #%d has no eligible users", apperrors.ErrConflict, id)
	}
	totalSlots := draw.TotalPrizeSlots()
	if totalSlots == 0 {
		return nil, fmt.Errorf("%w: draw #%d has no prize slots", apperrors.ErrConflict, id)
	}
	if len(pool) < totalSlots {
		return nil, fmt.Errorf("%w: draw #%d has %d eligible users for %d prize slots",
			apperrors.ErrConflict, id, len(pool), totalSlots)
	}

	// Разворачиваем призы в плоский список мест
	prizeSlots := make([]string, 0, totalSlots)
	for _, prize := range draw.Prizes {
		for i := 0; i < prize.Quantity; i++ {
			prizeSlots = append(prizeSlots, prize.Name)
		}
	}

	// Равновероятный выбор без повторов
	shuffled := make([]uint, len(pool))
	copy(shuffled, pool)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	winnerIDs := shuffled[:totalSlots]

	now := time.Now()
	winnersByID := make(map[uint]string, totalSlots)
	for i, userID := range winnerIDs {
		winnersByID[userID] = prizeSlots[i]
		draw.Winners = append(draw.Winners, entity.Winner{
			UserID:     userID,
			Prize:      prizeSlots[i],
			SelectedAt: now,
		})
	}

	// Обновляем прогресс всех участников пула
	progressions, err := s.progressionRepo.ListByUserIDs(pool)
	if err != nil {
		return nil, err
	}
	for i := range progressions {
		progression := &progressions[i]
		prize, won := winnersByID[progression.UserID]

		if record, ok := progression.DrawParticipations.Find(draw.ID); ok {
			record.Won = won
			record.Prize = prize
			record.Eligible = true
		} else {
			progression.DrawParticipations = append(progression.DrawParticipations, entity.Participation{
				LuckyDrawID: draw.ID,
				CategoryID:  draw.CategoryID,
				Eligible:    true,
				Won:         won,
				Prize:       prize,
			})
		}

		if won {
			if completion, ok := progression.CategoryCompletions.Find(draw.CategoryID); ok {
				completion.LuckyDrawWon = true
				completion.LuckyDrawParticipated = true
			}
			if err := s.progressionService.UnlockNextCategoryForWinner(progression, draw.CategoryID); err != nil {
				log.Printf("[LuckyDrawService] Не удалось открыть следующую категорию победителю %d: %v",
					progression.UserID, err)
			}
		}

		if err := s.progressionRepo.Update(progression); err != nil {
			return nil, fmt.Errorf("failed to update progression for user #%d: %w", progression.UserID, err)
		}
	}

	// Победители выбывают из пула, розыгрыш уходит на следующий месяц
	draw.EligibleUsers.Remove(winnerIDs...)
	draw.Status = entity.LuckyDrawStatusScheduled
	draw.ScheduledDate = draw.ScheduledDate.AddDate(0, 1, 0)
	if err := s.drawRepo.Update(draw); err != nil {
		return nil, err
	}

	s.notifyWinners(ctx, draw, winnersByID)

	log.Printf("[LuckyDrawService] Розыгрыш %d проведён: %d победителей, следующий на %s",
		draw.ID, len(winnerIDs), draw.ScheduledDate.Format("2006-01-02"))
	return draw, nil
}

// notifyWinners рассылает уведомления победителям. Ошибки только логируются.
func (s *LuckyDrawService) notifyWinners(ctx context.Context, draw *entity.LuckyDraw, winnersByID map[uint]string) {
	if s.emailService == nil {
		return
	}
	for userID, prize := range winnersByID {
		email, err := s.userDirectory.EmailByUserID(userID)
		if err != nil {
			log.Printf("[LuckyDrawService] Email победителя %d не найден: %v", userID, err)
			continue
		}
		if err := s.emailService.SendWinnerNotification(ctx, email, draw.Name, prize); err != nil {
			log.Printf("[LuckyDrawService] Не удалось отправить уведомление победителю %d: %v", userID, err)
		}
	}
}

// RunDueDraws находит запланированные на текущие сутки розыгрыши,
// пересчитывает их пулы и проводит. Ошибки отдельных розыгрышей
// собираются в сводку и не прерывают проход. Суточная отметка в кеше
// защищает от повторного проведения при перезапуске процесса.
func (s *LuckyDrawService) RunDueDraws(ctx context.Context, now time.Time) (*RunSummary, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	draws, err := s.drawRepo.ListDueBetween(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{}
	for i := range draws {
		draw := &draws[i]
		summary.Processed++

		if s.cacheRepo != nil {
			markerKey := fmt.Sprintf("luckydraw:executed:%d:%s", draw.ID, dayStart.Format("2006-01-02"))
			acquired, err := s.cacheRepo.SetNX(markerKey, "1", 24*time.Hour)
			if err != nil {
				log.Printf("[LuckyDrawService] Не удалось проверить суточную отметку розыгрыша %d: %v", draw.ID, err)
			} else if !acquired {
				summary.Skipped++
				log.Printf("[LuckyDrawService] Розыгрыш %d уже проводился сегодня, пропускаем", draw.ID)
				continue
			}
		}

		if _, err := s.RefreshEligibleUsers(draw.ID); err != nil {
			summary.Failures = append(summary.Failures, fmt.Sprintf("draw #%d: refresh failed: %v", draw.ID, err))
			continue
		}
		if _, err := s.ExecuteDraw(ctx, draw.ID); err != nil {
			summary.Failures = append(summary.Failures, fmt.Sprintf("draw #%d: execute failed: %v", draw.ID, err))
			continue
		}
		summary.Executed++
	}

	log.Printf("[LuckyDrawService] Проход по назревшим розыгрышам: обработано %d, проведено %d, пропущено %d, ошибок %d",
		summary.Processed, summary.Executed, summary.Skipped, len(summary.Failures))
	return summary, nil
}

// Winners возвращает накопительный список победителей розыгрыша
func (s *LuckyDrawService) Winners(id uint) (entity.WinnerList, error) {
	draw, err := s.drawRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(draw.Winners) == 0 {
		return nil, fmt.Errorf("%w: draw #%d has no winners yet", apperrors.ErrNotFound, id)
	}
	return draw.Winners, nil
}

// UserDrawHistory возвращает историю участий пользователя в розыгрышах
func (s *LuckyDrawService) UserDrawHistory(userID uint) ([]ParticipationRecord, error) {
	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	history := make([]ParticipationRecord, 0, len(progression.DrawParticipations))
	for _, participation := range progression.DrawParticipations {
		record := ParticipationRecord{Participation: participation}
		if draw, err := s.drawRepo.GetByID(participation.LuckyDrawID); err == nil {
			record.Draw = draw
		}
		history = append(history, record)
	}
	return history, nil
}

// UpcomingDrawsForUser возвращает будущие запланированные розыгрыши по
// категориям, которые пользователь прошёл, но ещё не выиграл
func (s *LuckyDrawService) UpcomingDrawsForUser(userID uint) ([]entity.LuckyDraw, error) {
	progression, err := s.progressionRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var upcoming []entity.LuckyDraw
	for _, completion := range progression.CategoryCompletions {
		if completion.LuckyDrawWon {
			continue
		}
		draws, err := s.drawRepo.ListScheduledByCategory(completion.CategoryID)
		if err != nil {
			return nil, err
		}
		for _, draw := range draws {
			if draw.ScheduledDate.After(now) {
				upcoming = append(upcoming, draw)
			}
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledDate.Before(upcoming[j].ScheduledDate)
	})
	return upcoming, nil
}

// Stats считает сводную статистику по розыгрышам. year и month (опционально)
// сужают выборку, categoryID фильтрует по категории. Для запроса только по
// году дополнительно считается помесячная разбивка победителей.
func (s *LuckyDrawService) Stats(year, month int, categoryID uint) (*DrawStats, error) {
	filters := repository.LuckyDrawFilters{CategoryID: categoryID}
	if year > 0 {
		var from, to time.Time
		if month >= 1 && month <= 12 {
			from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		} else {
			from = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(1, 0, 0)
		}
		filters.DateFrom = &from
		filters.DateTo = &to
	}

	draws, err := s.drawRepo.List(filters)
	if err != nil {
		return nil, err
	}

	stats := &DrawStats{
		ByStatus:   map[string]int{},
		ByCategory: map[uint]int{},
	}
	if year > 0 && month == 0 {
		stats.MonthlyWinners = map[string]int{}
	}

	for _, draw := range draws {
		stats.TotalDraws++
		stats.ByStatus[draw.Status]++
		stats.TotalWinners += len(draw.Winners)
		stats.ByCategory[draw.CategoryID] += len(draw.Winners)

		if stats.MonthlyWinners != nil {
			for _, winner := range draw.Winners {
				if winner.SelectedAt.Year() == year {
					stats.MonthlyWinners[winner.SelectedAt.Format("2006-01")]++
				}
			}
		}
	}
	return stats, nil
}

// WinnerStats возвращает топ победителей по числу побед с длиной победной
// серии (победы с разрывом не более 30 дней) и средним интервалом между
// победами в днях
func (s *LuckyDrawService) WinnerStats(limit int) ([]WinnerStat, error) {
	if limit <= 0 {
		limit = 10
	}

	draws, err := s.drawRepo.List(repository.LuckyDrawFilters{})
	if err != nil {
		return nil, err
	}

	winsByUser := map[uint][]time.Time{}
	for _, draw := range draws {
		for _, winner := range draw.Winners {
			winsByUser[winner.UserID] = append(winsByUser[winner.UserID], winner.SelectedAt)
		}
	}

	stats := make([]WinnerStat, 0, len(winsByUser))
	for userID, wins := range winsByUser {
		sort.Slice(wins, func(i, j int) bool { return wins[i].Before(wins[j]) })

		stat := WinnerStat{
			UserID:    userID,
			Wins:      len(wins),
			LastWinAt: wins[len(wins)-1],
		}

		// Победная серия: считаем с конца, пока разрыв укладывается в окно
		streak := 1
		for i := len(wins) - 1; i > 0; i-- {
			if wins[i].Sub(wins[i-1]) <= winningStreakWindow {
				streak++
			} else {
				break
			}
		}
		stat.WinningStreak = streak

		if len(wins) > 1 {
			totalDays := wins[len(wins)-1].Sub(wins[0]).Hours() / 24
			stat.AvgDaysBetween = totalDays / float64(len(wins)-1)
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Wins != stats[j].Wins {
			return stats[i].Wins > stats[j].Wins
		}
		return stats[i].UserID < stats[j].UserID
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
