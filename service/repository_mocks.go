package service

import (
	"context"
	"time"

	"slotbot/events"
	"slotbot/models"

	"github.com/stretchr/testify/mock"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, bool, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPlayerRepository) CreditBalance(ctx context.Context, discordID int64, amount int64, maxBalance int64) (int64, bool, error) {
	args := m.Called(ctx, discordID, amount, maxBalance)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPlayerRepository) SetBalance(ctx context.Context, discordID int64, balance int64) error {
	args := m.Called(ctx, discordID, balance)
	return args.Error(0)
}

// MockBalanceCacheRepository is a mock implementation of BalanceCacheRepository
type MockBalanceCacheRepository struct {
	mock.Mock
}

func (m *MockBalanceCacheRepository) GetBalance(ctx context.Context, discordID int64) (int64, bool, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCacheRepository) SetBalance(ctx context.Context, discordID int64, balance int64) error {
	args := m.Called(ctx, discordID, balance)
	return args.Error(0)
}

// MockDuelRepository is a mock implementation of DuelRepository
type MockDuelRepository struct {
	mock.Mock
}

func (m *MockDuelRepository) CreateChallenge(ctx context.Context, challenge *models.DuelChallenge, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, challenge, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuelRepository) GetChallenge(ctx context.Context, challengerID int64) (*models.DuelChallenge, error) {
	args := m.Called(ctx, challengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelChallenge), args.Error(1)
}

func (m *MockDuelRepository) DeleteChallenge(ctx context.Context, challengerID int64) (bool, error) {
	args := m.Called(ctx, challengerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuelRepository) ListChallenges(ctx context.Context) ([]*models.DuelChallenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DuelChallenge), args.Error(1)
}

func (m *MockDuelRepository) Claim(ctx context.Context, challengerID int64, createdAt time.Time, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, challengerID, createdAt, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuelRepository) ReleaseClaim(ctx context.Context, challengerID int64, createdAt time.Time) {
	m.Called(ctx, challengerID, createdAt)
}

func (m *MockDuelRepository) SetCooldown(ctx context.Context, challengerID int64, d time.Duration) error {
	args := m.Called(ctx, challengerID, d)
	return args.Error(0)
}

func (m *MockDuelRepository) CooldownRemaining(ctx context.Context, challengerID int64) (time.Duration, error) {
	args := m.Called(ctx, challengerID)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockDuelRepository) SetOptOut(ctx context.Context, discordID int64, optedOut bool) error {
	args := m.Called(ctx, discordID, optedOut)
	return args.Error(0)
}

func (m *MockDuelRepository) IsOptedOut(ctx context.Context, discordID int64) (bool, error) {
	args := m.Called(ctx, discordID)
	return args.Bool(0), args.Error(1)
}

// MockDuelLogRepository is a mock implementation of DuelLogRepository
type MockDuelLogRepository struct {
	mock.Mock
}

func (m *MockDuelLogRepository) Record(ctx context.Context, entry *models.DuelLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDuelLogRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.DuelLogEntry, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DuelLogEntry), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	args := m.Called(ctx, discordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Deduct(ctx context.Context, discordID int64, amount int64) (int64, bool, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) Credit(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Zero(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// nopPublisher swallows events; for tests that do not assert on them
type nopPublisher struct{}

func (nopPublisher) Emit(ctx context.Context, event events.Event) {}
