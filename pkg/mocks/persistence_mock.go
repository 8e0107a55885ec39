// Package mocks provides testify mocks for the repository and event bus interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockDealRepository is a mock implementation of persistence.DealRepository.
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, deal *models.Deal) error {
	args := m.Called(ctx, deal)

	return args.Error(0)
}

func (m *MockDealRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Deal, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *MockDealRepository) UpdateOwner(ctx context.Context, organizationID, id, ownerID string) error {
	args := m.Called(ctx, organizationID, id, ownerID)

	return args.Error(0)
}

func (m *MockDealRepository) AddTag(ctx context.Context, organizationID, id, tag string) (bool, error) {
	args := m.Called(ctx, organizationID, id, tag)

	return args.Bool(0), args.Error(1)
}

func (m *MockDealRepository) UpdateData(ctx context.Context, organizationID, id string, data map[string]any) error {
	args := m.Called(ctx, organizationID, id, data)

	return args.Error(0)
}

func (m *MockDealRepository) MoveToStage(
	ctx context.Context,
	organizationID, id, stageID string,
	at time.Time,
) (*models.StageTransition, error) {
	args := m.Called(ctx, organizationID, id, stageID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.StageTransition), args.Error(1)
}

func (m *MockDealRepository) ListOpen(ctx context.Context, organizationID string) ([]*models.Deal, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *MockDealRepository) OpenOrganizations(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDealRepository) Transitions(ctx context.Context, organizationID, dealID string) ([]*models.StageTransition, error) {
	args := m.Called(ctx, organizationID, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.StageTransition), args.Error(1)
}

// MockTaskRepository is a mock implementation of persistence.TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)

	return args.Error(0)
}

func (m *MockTaskRepository) ListByDeal(ctx context.Context, organizationID, dealID string) ([]*models.Task, error) {
	args := m.Called(ctx, organizationID, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Task), args.Error(1)
}

// MockNotificationRepository is a mock implementation of persistence.NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, organizationID, userID string) ([]*models.Notification, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Notification), args.Error(1)
}

// MockUserRepository is a mock implementation of persistence.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, organizationID, role string) ([]*models.User, error) {
	args := m.Called(ctx, organizationID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.User), args.Error(1)
}

// MockCursorRepository is a mock implementation of persistence.CursorRepository.
type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) Next(ctx context.Context, organizationID, role string) (int64, error) {
	args := m.Called(ctx, organizationID, role)

	return args.Get(0).(int64), args.Error(1)
}

// MockFiringRepository is a mock implementation of persistence.FiringRepository.
type MockFiringRepository struct {
	mock.Mock
}

func (m *MockFiringRepository) Claim(ctx context.Context, firing *models.AutomationFiring) (bool, error) {
	args := m.Called(ctx, firing)

	return args.Bool(0), args.Error(1)
}

var (
	_ persistence.DealRepository         = (*MockDealRepository)(nil)
	_ persistence.TaskRepository         = (*MockTaskRepository)(nil)
	_ persistence.NotificationRepository = (*MockNotificationRepository)(nil)
	_ persistence.UserRepository         = (*MockUserRepository)(nil)
	_ persistence.CursorRepository       = (*MockCursorRepository)(nil)
	_ persistence.FiringRepository       = (*MockFiringRepository)(nil)
)
