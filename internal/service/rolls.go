package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bag-mes/internal/apperr"
	"bag-mes/internal/constants"
	"bag-mes/internal/service/notify"
	"bag-mes/internal/service/production"
	"bag-mes/internal/service/roll"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CreateRollInput struct {
	ProductionOrderID int64
	WeightKg          decimal.Decimal
	IsLastRoll        bool
	CreatedBy         int64
	FilmMachineID     int64
}

// StageInput — перевод рулона на следующий этап на конкретной машине.
type StageInput struct {
	RollID    int64
	MachineID int64
	By        int64
}

type CreateCutInput struct {
	RollID      int64
	CutWeightKg decimal.Decimal
	Pieces      int
	PerformedBy int64
}

func (s *ProductionService) CreateRoll(ctx context.Context, in CreateRollInput) (*storage.Roll, error) {
	const op = "service.CreateRoll"

	var machine *storage.Machine

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		machine, err = s.storage.GetMachine(gCtx, in.FilmMachineID)
		return err
	})
	g.Go(func() error {
		_, err := s.storage.GetProductionOrder(gCtx, in.ProductionOrderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := roll.CheckMachine(*machine, constants.SectionFilm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := storage.NewRoll{
		ProductionOrderID: in.ProductionOrderID,
		WeightKg:          in.WeightKg.Round(constants.WeightPlaces),
		IsLastRoll:        in.IsLastRoll,
		CreatedBy:         in.CreatedBy,
		FilmMachineID:     in.FilmMachineID,
	}

	r, err := s.storage.CreateRoll(ctx, req, func(snap storage.ProductionSnapshot) (storage.ProductionOrder, error) {
		state := production.FromOrder(snap.ProductionOrder)
		if err := production.NewGuard(snap.Settings).Admit(state, req.WeightKg, req.IsLastRoll); err != nil {
			return snap.ProductionOrder, err
		}

		next := state.AddRoll(req.WeightKg)
		po := snap.ProductionOrder
		po.ProducedWeightKg = next.ProducedWeight
		po.Status = next.Status
		return po, nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrRemainingQuantityExceeded) {
			s.log.Warn("Рулон отклонён: превышен остаток",
				slog.String("op", op),
				slog.Int64("production_order_id", in.ProductionOrderID),
				slog.String("weight_kg", req.WeightKg.StringFixed(2)),
			)
			s.notifier.Notify(ctx, notify.KindOverrunRejected, "production_order", in.ProductionOrderID,
				"рулон %s кг отклонён: %v", req.WeightKg.StringFixed(2), err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

func (s *ProductionService) GetRoll(ctx context.Context, id int64) (*storage.Roll, error) {
	const op = "service.GetRoll"

	r, err := s.storage.GetRoll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *ProductionService) PrintRoll(ctx context.Context, in StageInput) (*storage.Roll, error) {
	const op = "service.PrintRoll"

	machine, err := s.storage.GetMachine(ctx, in.MachineID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := s.storage.AdvanceRoll(ctx, in.RollID, func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error) {
		if err := production.CheckOpen(snap.ProductionOrder); err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}
		next, err := roll.Print(snap.Roll, *machine, in.By, s.now())
		return next, snap.ProductionOrder, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *ProductionService) StartCutting(ctx context.Context, in StageInput) (*storage.Roll, error) {
	const op = "service.StartCutting"

	machine, err := s.storage.GetMachine(ctx, in.MachineID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := s.storage.AdvanceRoll(ctx, in.RollID, func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error) {
		if err := production.CheckOpen(snap.ProductionOrder); err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}
		next, err := roll.StartCutting(snap.Roll, *machine, in.By, snap.ProductionOrder.RequiresPrinting, s.now())
		return next, snap.ProductionOrder, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// CompleteRoll закрывает рулон. Производственный заказ завершается, когда
// среди его рулонов есть последний и все рулоны done.
func (s *ProductionService) CompleteRoll(ctx context.Context, rollID int64) (*storage.Roll, error) {
	const op = "service.CompleteRoll"

	var poCompleted bool
	var poID int64

	r, err := s.storage.AdvanceRoll(ctx, rollID, func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error) {
		poCompleted = false
		poID = snap.ProductionOrder.ID

		if err := production.CheckOpen(snap.ProductionOrder); err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}

		next, err := roll.Complete(snap.Roll, cuttingMachine(snap), snap.Settings.WasteTolerancePercent, s.now())
		if err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}

		po := snap.ProductionOrder
		state := production.FromOrder(po)
		po.CompletionPercent = state.CompletionPercent()

		// закрываемый рулон сам входит в Open
		if snap.Rolls.HasLast && snap.Rolls.Open <= 1 {
			po.Status = storage.POStatusCompleted
			poCompleted = true
		}
		return next, po, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, notify.KindRollCompleted, "roll", r.ID,
		"рулон %d завершён, отходы %s кг", r.ID, r.WasteKg.StringFixed(2))

	if poCompleted {
		s.log.Info("Производственный заказ завершён", slog.Int64("production_order_id", poID))
		s.notifier.Notify(ctx, notify.KindProductionComplete, "production_order", poID,
			"производственный заказ %d завершён", poID)
	}

	return r, nil
}

// CreateCut записывает рез. Рулон должен быть на этапе cutting.
func (s *ProductionService) CreateCut(ctx context.Context, in CreateCutInput) (*storage.Cut, error) {
	const op = "service.CreateCut"

	if !in.CutWeightKg.IsPositive() {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("cut_weight_kg должен быть больше 0"))
	}
	if in.Pieces < 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("pieces не может быть отрицательным"))
	}

	req := storage.NewCut{
		RollID:      in.RollID,
		CutWeightKg: in.CutWeightKg.Round(constants.WeightPlaces),
		Pieces:      in.Pieces,
		PerformedBy: in.PerformedBy,
	}

	cut, err := s.storage.CreateCut(ctx, req, func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error) {
		if err := production.CheckOpen(snap.ProductionOrder); err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}

		next, err := roll.AddCut(snap.Roll, cuttingMachine(snap), req.CutWeightKg)
		if err != nil {
			return snap.Roll, snap.ProductionOrder, err
		}

		state := production.FromOrder(snap.ProductionOrder).AddCut(req.CutWeightKg)
		po := snap.ProductionOrder
		po.CutWeightKg = state.CutWeight
		po.CompletionPercent = state.CompletionPercent()
		return next, po, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cut, nil
}

// cuttingMachine — машина, на которой рулон режется. У рулона на этапе
// cutting она всегда есть; пустая машина не пройдёт CheckMachine.
func cuttingMachine(snap storage.RollSnapshot) storage.Machine {
	if snap.CuttingMachine == nil {
		return storage.Machine{}
	}
	return *snap.CuttingMachine
}
