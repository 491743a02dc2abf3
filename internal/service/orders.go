package service

import (
	"context"
	"fmt"
	"log/slog"

	"bag-mes/internal/apperr"
	"bag-mes/internal/service/notify"
	"bag-mes/internal/service/orderstatus"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type OrderLineInput struct {
	ProductID  int64
	QuantityKg decimal.Decimal
}

type CreateOrderInput struct {
	CustomerID int64
	Notes      string
	Lines      []OrderLineInput
}

// CreateOrder создаёт заказ клиента вместе с производственными заказами
// по каждой строке. Перепроизвод считается только здесь.
func (s *ProductionService) CreateOrder(ctx context.Context, in CreateOrderInput) (*storage.Order, error) {
	const op = "service.CreateOrder"

	if in.CustomerID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("customer_id обязателен"))
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("заказ без строк"))
	}

	products := make([]*storage.Product, len(in.Lines))

	g, gCtx := errgroup.WithContext(ctx)
	for i, line := range in.Lines {
		i, line := i, line
		g.Go(func() error {
			p, err := s.storage.GetProduct(gCtx, line.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := storage.NewOrder{CustomerID: in.CustomerID, Notes: in.Notes}
	for i, line := range in.Lines {
		po, err := s.newProductionOrder(products[i], line.QuantityKg)
		if err != nil {
			return nil, fmt.Errorf("%s: строка %d: %w", op, i+1, err)
		}
		req.Lines = append(req.Lines, po)
	}

	order, err := s.storage.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

func (s *ProductionService) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "service.GetOrder"

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// ChangeOrderStatus переводит заказ в новый статус. Проверка идёт внутри
// транзакции хранилища по заблокированному заказу и его производственным заказам.
func (s *ProductionService) ChangeOrderStatus(ctx context.Context, id int64, status string) (*storage.StatusChange, error) {
	const op = "service.ChangeOrderStatus"

	change, err := s.storage.UpdateOrderStatus(ctx, id, func(o storage.Order) (string, error) {
		if err := orderstatus.Transition(o.Status, status, o.ProductionOrders); err != nil {
			return "", err
		}
		return status, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if change.PreviousStatus != change.Status {
		s.log.Info("Статус заказа изменён",
			slog.Int64("order_id", id),
			slog.String("from", change.PreviousStatus),
			slog.String("to", change.Status),
		)
		s.notifier.Notify(ctx, notify.KindOrderStatusChanged, "order", id,
			"заказ %d: %s -> %s", id, change.PreviousStatus, change.Status)
	}

	return change, nil
}
