package service

import (
	"context"
	"io"
	"log/slog"

	"bag-mes/internal/service/notify"
	"bag-mes/internal/service/quantity"
	"bag-mes/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage реализует ProductionStorage. Для транзакционных методов
// мок отдаёт снимок из On(...).Return(...), вызывает fn и запоминает
// то, что хранилище записало бы.
type MockStorage struct {
	mock.Mock

	SavedRoll            *storage.Roll
	SavedProductionOrder *storage.ProductionOrder
	SavedUpdate          *storage.UpdateProductionOrder
}

func (m *MockStorage) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Product), args.Error(1)
}

func (m *MockStorage) GetMachine(ctx context.Context, id int64) (*storage.Machine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Machine), args.Error(1)
}

func (m *MockStorage) GetAllMachines(ctx context.Context) ([]storage.Machine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Machine), args.Error(1)
}

func (m *MockStorage) UpdateMachineStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockStorage) GetSettings(ctx context.Context) (storage.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(storage.Settings), args.Error(1)
}

func (m *MockStorage) SaveSettings(ctx context.Context, s storage.Settings) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStorage) CreateOrder(ctx context.Context, req storage.NewOrder) (*storage.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Order), args.Error(1)
}

func (m *MockStorage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Order), args.Error(1)
}

func (m *MockStorage) UpdateOrderStatus(ctx context.Context, id int64, fn func(o storage.Order) (string, error)) (*storage.StatusChange, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	order := args.Get(0).(storage.Order)
	status, err := fn(order)
	if err != nil {
		return nil, err
	}
	return &storage.StatusChange{OrderID: id, PreviousStatus: order.Status, Status: status}, nil
}

func (m *MockStorage) CreateProductionOrder(ctx context.Context, req storage.NewProductionOrder) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockStorage) GetProductionOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockStorage) UpdateProductionOrder(ctx context.Context, id int64, fn func(snap storage.ProductionSnapshot) (storage.UpdateProductionOrder, error)) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	// Return принимает и голый заказ, и снимок со сводкой по рулонам
	var snap storage.ProductionSnapshot
	switch v := args.Get(0).(type) {
	case storage.ProductionSnapshot:
		snap = v
	case storage.ProductionOrder:
		snap = storage.ProductionSnapshot{ProductionOrder: v}
	}

	upd, err := fn(snap)
	if err != nil {
		return nil, err
	}
	m.SavedUpdate = &upd

	cur := snap.ProductionOrder
	if upd.Status != nil {
		cur.Status = *upd.Status
	}
	return &cur, nil
}

func (m *MockStorage) CreateRoll(ctx context.Context, req storage.NewRoll, fn func(snap storage.ProductionSnapshot) (storage.ProductionOrder, error)) (*storage.Roll, error) {
	args := m.Called(ctx, req)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	po, err := fn(args.Get(0).(storage.ProductionSnapshot))
	if err != nil {
		return nil, err
	}
	m.SavedProductionOrder = &po

	return &storage.Roll{
		ID:                1,
		Seq:               1,
		ProductionOrderID: req.ProductionOrderID,
		Stage:             storage.StageFilm,
		WeightKg:          req.WeightKg,
		IsLastRoll:        req.IsLastRoll,
		CreatedBy:         req.CreatedBy,
		FilmMachineID:     req.FilmMachineID,
	}, nil
}

func (m *MockStorage) GetRoll(ctx context.Context, id int64) (*storage.Roll, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Roll), args.Error(1)
}

func (m *MockStorage) GetRollsByProductionOrder(ctx context.Context, productionOrderID int64) ([]storage.Roll, error) {
	args := m.Called(ctx, productionOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Roll), args.Error(1)
}

func (m *MockStorage) AdvanceRoll(ctx context.Context, id int64, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Roll, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	r, po, err := fn(args.Get(0).(storage.RollSnapshot))
	if err != nil {
		return nil, err
	}
	m.SavedRoll = &r
	m.SavedProductionOrder = &po
	return &r, nil
}

func (m *MockStorage) CreateCut(ctx context.Context, req storage.NewCut, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Cut, error) {
	args := m.Called(ctx, req)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	r, po, err := fn(args.Get(0).(storage.RollSnapshot))
	if err != nil {
		return nil, err
	}
	m.SavedRoll = &r
	m.SavedProductionOrder = &po
	return &storage.Cut{ID: 1, RollID: req.RollID, CutWeightKg: req.CutWeightKg, Pieces: req.Pieces, PerformedBy: req.PerformedBy}, nil
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) SaveNotification(ctx context.Context, n storage.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationStore) GetLatestNotifications(ctx context.Context, limit int) ([]storage.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Notification), args.Error(1)
}

func newTestService() (*ProductionService, *MockStorage, *MockNotificationStore) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := new(MockStorage)
	notes := new(MockNotificationStore)

	svc := NewProductionService(log, st, quantity.NewCalculator(false), notify.New(log, notes, nil))
	return svc, st, notes
}
