package service

import (
	"context"
	"log/slog"
	"time"

	"bag-mes/internal/service/notify"
	"bag-mes/internal/service/quantity"
	"bag-mes/internal/storage"
)

// ProductionStorage — то, что сервису нужно от хранилища. Методы с fn
// выполняются в одной транзакции: строки блокируются FOR UPDATE,
// fn проверяет снимок, затем изменения пишутся и коммитятся.
type ProductionStorage interface {
	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetMachine(ctx context.Context, id int64) (*storage.Machine, error)
	GetAllMachines(ctx context.Context) ([]storage.Machine, error)
	UpdateMachineStatus(ctx context.Context, id int64, status string) error
	GetSettings(ctx context.Context) (storage.Settings, error)
	SaveSettings(ctx context.Context, s storage.Settings) error

	CreateOrder(ctx context.Context, req storage.NewOrder) (*storage.Order, error)
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, fn func(o storage.Order) (string, error)) (*storage.StatusChange, error)

	CreateProductionOrder(ctx context.Context, req storage.NewProductionOrder) (*storage.ProductionOrder, error)
	GetProductionOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	UpdateProductionOrder(ctx context.Context, id int64, fn func(snap storage.ProductionSnapshot) (storage.UpdateProductionOrder, error)) (*storage.ProductionOrder, error)

	CreateRoll(ctx context.Context, req storage.NewRoll, fn func(snap storage.ProductionSnapshot) (storage.ProductionOrder, error)) (*storage.Roll, error)
	GetRoll(ctx context.Context, id int64) (*storage.Roll, error)
	GetRollsByProductionOrder(ctx context.Context, productionOrderID int64) ([]storage.Roll, error)
	AdvanceRoll(ctx context.Context, id int64, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Roll, error)

	CreateCut(ctx context.Context, req storage.NewCut, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Cut, error)
}

type ProductionService struct {
	log      *slog.Logger
	storage  ProductionStorage
	calc     *quantity.Calculator
	notifier *notify.Notifier
	now      func() time.Time
}

func NewProductionService(log *slog.Logger, storage ProductionStorage, calc *quantity.Calculator, notifier *notify.Notifier) *ProductionService {
	return &ProductionService{
		log:      log,
		storage:  storage,
		calc:     calc,
		notifier: notifier,
		now:      time.Now,
	}
}
