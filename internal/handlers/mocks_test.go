package handlers

import (
	"context"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockMaintenanceCollection is a mock implementation of db.MaintenanceCollection
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) InsertRequest(ctx context.Context, req models.MaintenanceRequest) (primitive.ObjectID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockMaintenanceCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceCollection) ListRequests(ctx context.Context, filter db.RequestFilter, cursor string, limit int) (*db.RequestPage, error) {
	args := m.Called(ctx, filter, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.RequestPage), args.Error(1)
}

func (m *MockMaintenanceCollection) ListAllRequests(ctx context.Context, filter db.RequestFilter) ([]models.MaintenanceRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceCollection) PatchRequest(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) CountActiveAssignments(ctx context.Context, technicianID primitive.ObjectID, propertyID *primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, technicianID, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaintenanceCollection) InsertUpdate(ctx context.Context, update models.MaintenanceUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) ListUpdates(ctx context.Context, requestID string) ([]models.MaintenanceUpdate, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceUpdate), args.Error(1)
}

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPropertyCollection is a mock implementation of db.PropertyCollection
type MockPropertyCollection struct {
	mock.Mock
}

func (m *MockPropertyCollection) InsertProperty(ctx context.Context, property models.Property) (primitive.ObjectID, error) {
	args := m.Called(ctx, property)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockPropertyCollection) FindPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyCollection) InsertUnit(ctx context.Context, unit models.Unit) (primitive.ObjectID, error) {
	args := m.Called(ctx, unit)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockPropertyCollection) FindUnitByID(ctx context.Context, id string) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockPropertyCollection) FindUnitsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Unit, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Unit), args.Error(1)
}
