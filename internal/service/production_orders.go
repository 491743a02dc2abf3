package service

import (
	"context"
	"fmt"

	"bag-mes/internal/apperr"
	"bag-mes/internal/service/production"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ProductionOrderView — заказ с производными величинами для клиента.
type ProductionOrderView struct {
	storage.ProductionOrder
	RemainingKg decimal.Decimal `json:"remaining_kg"`
	ToleranceKg decimal.Decimal `json:"tolerance_kg"`
}

type CreateProductionOrderInput struct {
	OrderID    int64
	ProductID  int64
	QuantityKg decimal.Decimal
}

// UpdateProductionOrderInput — nil означает "не менять".
type UpdateProductionOrderInput struct {
	ProductID  *int64
	QuantityKg *decimal.Decimal
	Status     *string
}

func (s *ProductionService) newProductionOrder(p *storage.Product, qty decimal.Decimal) (storage.NewProductionOrder, error) {
	res, err := s.calc.Calculate(qty, p.Punching)
	if err != nil {
		return storage.NewProductionOrder{}, err
	}

	return storage.NewProductionOrder{
		ProductID:         p.ID,
		Punching:          p.Punching,
		RequiresPrinting:  p.RequiresPrinting,
		QuantityKg:        qty.Round(2),
		FinalQuantityKg:   res.FinalQuantityKg,
		OverrunPercentage: res.OverrunPercentage,
		OverrunReason:     res.OverrunReason,
	}, nil
}

func (s *ProductionService) CreateProductionOrder(ctx context.Context, in CreateProductionOrderInput) (*storage.ProductionOrder, error) {
	const op = "service.CreateProductionOrder"

	var product *storage.Product

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.storage.GetOrder(gCtx, in.OrderID)
		return err
	})
	g.Go(func() error {
		var err error
		product, err = s.storage.GetProduct(gCtx, in.ProductID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := s.newProductionOrder(product, in.QuantityKg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.OrderID = in.OrderID

	po, err := s.storage.CreateProductionOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return po, nil
}

func (s *ProductionService) GetProductionOrder(ctx context.Context, id int64) (*ProductionOrderView, error) {
	const op = "service.GetProductionOrder"

	var (
		po       *storage.ProductionOrder
		settings storage.Settings
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		po, err = s.storage.GetProductionOrder(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.storage.GetSettings(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	state := production.FromOrder(*po)
	return &ProductionOrderView{
		ProductionOrder: *po,
		RemainingKg:     state.Remaining(),
		ToleranceKg:     state.ToleranceKg(settings.OverrunTolerancePercent),
	}, nil
}

// UpdateProductionOrder пересчитывает перепроизвод, если поменялось
// количество или продукт. Присланные клиентом итоговые значения не читаются.
func (s *ProductionService) UpdateProductionOrder(ctx context.Context, id int64, in UpdateProductionOrderInput) (*storage.ProductionOrder, error) {
	const op = "service.UpdateProductionOrder"

	if in.Status != nil && !production.IsValidStatus(*in.Status) {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("неизвестный статус %q", *in.Status))
	}

	var product *storage.Product
	if in.ProductID != nil {
		p, err := s.storage.GetProduct(ctx, *in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		product = p
	}

	po, err := s.storage.UpdateProductionOrder(ctx, id, func(snap storage.ProductionSnapshot) (storage.UpdateProductionOrder, error) {
		var upd storage.UpdateProductionOrder
		cur := snap.ProductionOrder

		if err := production.CheckOpen(cur); err != nil {
			return upd, err
		}

		punching := cur.Punching
		qty := cur.QuantityKg
		recalc := false

		if product != nil && product.ID != cur.ProductID {
			upd.ProductID = &product.ID
			upd.Punching = &product.Punching
			upd.RequiresPrinting = &product.RequiresPrinting
			punching = product.Punching
			recalc = true
		}
		if in.QuantityKg != nil && !in.QuantityKg.Equal(cur.QuantityKg) {
			q := in.QuantityKg.Round(2)
			upd.QuantityKg = &q
			qty = q
			recalc = true
		}

		if recalc {
			res, err := s.calc.Calculate(qty, punching)
			if err != nil {
				return upd, err
			}
			upd.FinalQuantityKg = &res.FinalQuantityKg
			upd.OverrunPercentage = &res.OverrunPercentage
			upd.OverrunReason = &res.OverrunReason
		}

		if in.Status != nil && *in.Status != cur.Status {
			if err := production.CheckTransition(cur, *in.Status, snap.Rolls); err != nil {
				return upd, err
			}
			upd.Status = in.Status
		}

		return upd, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return po, nil
}

func (s *ProductionService) GetRolls(ctx context.Context, productionOrderID int64) ([]storage.Roll, error) {
	const op = "service.GetRolls"

	if _, err := s.storage.GetProductionOrder(ctx, productionOrderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rolls, err := s.storage.GetRollsByProductionOrder(ctx, productionOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rolls, nil
}
