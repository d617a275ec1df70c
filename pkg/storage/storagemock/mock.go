package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gmcavallazzi/opthome/pkg/storage"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetSnapshot(ctx context.Context, siteID string) (types.Snapshot, error) {
	args := m.Called(ctx, siteID)
	if len(args) > 0 {
		return args.Get(0).(types.Snapshot), args.Error(1)
	}
	return types.Snapshot{}, nil
}

func (m *MockDatabase) SetSnapshot(ctx context.Context, siteID string, snap types.Snapshot) error {
	args := m.Called(ctx, siteID, snap)
	return args.Error(0)
}

func (m *MockDatabase) GetSchedule(ctx context.Context, siteID string) (types.OptimizedSchedule, error) {
	args := m.Called(ctx, siteID)
	if len(args) > 0 {
		return args.Get(0).(types.OptimizedSchedule), args.Error(1)
	}
	return types.OptimizedSchedule{}, nil
}

func (m *MockDatabase) SetSchedule(ctx context.Context, siteID string, sched types.OptimizedSchedule) error {
	args := m.Called(ctx, siteID, sched)
	return args.Error(0)
}

func (m *MockDatabase) ListSites(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
