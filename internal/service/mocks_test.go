package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/entity"
	"github.com/testofislamworld/islamic-quiz-backend/internal/domain/repository"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов
// ============================================================================

// helper для создания pointer
func uintPtr(v uint) *uint { return &v }

// MockCategoryRepository реализует repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetWithQuizzes(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) List() ([]entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) First() (*entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) NextAfter(category *entity.Category) (*entity.Category, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListByCategory(categoryID uint) ([]entity.Quiz, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListAllWithQuestions() ([]entity.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) MaxSequence(categoryID uint) (int, error) {
	args := m.Called(categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) Update(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockProgressionRepository реализует repository.ProgressionRepository
type MockProgressionRepository struct {
	mock.Mock
}

func (m *MockProgressionRepository) Create(progression *entity.Progression) error {
	args := m.Called(progression)
	return args.Error(0)
}

func (m *MockProgressionRepository) GetByUserID(userID uint) (*entity.Progression, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progression), args.Error(1)
}

func (m *MockProgressionRepository) ListAll() ([]entity.Progression, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Progression), args.Error(1)
}

func (m *MockProgressionRepository) ListByUserIDs(userIDs []uint) ([]entity.Progression, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Progression), args.Error(1)
}

func (m *MockProgressionRepository) Update(progression *entity.Progression) error {
	args := m.Called(progression)
	return args.Error(0)
}

func (m *MockProgressionRepository) DeleteByUserID(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockLuckyDrawRepository реализует repository.LuckyDrawRepository
type MockLuckyDrawRepository struct {
	mock.Mock
}

func (m *MockLuckyDrawRepository) Create(draw *entity.LuckyDraw) error {
	args := m.Called(draw)
	return args.Error(0)
}

func (m *MockLuckyDrawRepository) GetByID(id uint) (*entity.LuckyDraw, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LuckyDraw), args.Error(1)
}

func (m *MockLuckyDrawRepository) List(filters repository.LuckyDrawFilters) ([]entity.LuckyDraw, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LuckyDraw), args.Error(1)
}

func (m *MockLuckyDrawRepository) ListScheduledByCategory(categoryID uint) ([]entity.LuckyDraw, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LuckyDraw), args.Error(1)
}

func (m *MockLuckyDrawRepository) ListDueBetween(from, to time.Time) ([]entity.LuckyDraw, error) {
	args := m.Called(from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LuckyDraw), args.Error(1)
}

func (m *MockLuckyDrawRepository) Update(draw *entity.LuckyDraw) error {
	args := m.Called(draw)
	return args.Error(0)
}

func (m *MockLuckyDrawRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockUserDirectory реализует repository.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) EmailByUserID(userID uint) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWinnerNotification(ctx context.Context, toEmail, drawName, prize string) error {
	args := m.Called(ctx, toEmail, drawName, prize)
	return args.Error(0)
}
