package service

import (
	"context"
	"fmt"
	"strings"

	"bag-mes/internal/apperr"
	"bag-mes/internal/constants"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
)

var (
	maxOverrunTolerance = decimal.NewFromInt(10)
	maxWasteTolerance   = decimal.NewFromInt(50)
)

func (s *ProductionService) GetSettings(ctx context.Context) (storage.Settings, error) {
	const op = "service.GetSettings"

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return storage.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

func (s *ProductionService) UpdateSettings(ctx context.Context, in storage.Settings) error {
	const op = "service.UpdateSettings"

	if err := ValidateSettings(in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	in.QRPrefix = strings.TrimSpace(in.QRPrefix)
	if err := s.storage.SaveSettings(ctx, in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ValidateSettings: допуск перепроизвода 0–10%, допуск отходов 0–50%.
func ValidateSettings(in storage.Settings) error {
	if in.OverrunTolerancePercent.IsNegative() || in.OverrunTolerancePercent.GreaterThan(maxOverrunTolerance) {
		return apperr.InvalidInput("overrun_tolerance_percent должен быть от 0 до 10, получено %s", in.OverrunTolerancePercent.String())
	}
	if in.WasteTolerancePercent.IsNegative() || in.WasteTolerancePercent.GreaterThan(maxWasteTolerance) {
		return apperr.InvalidInput("waste_tolerance_percent должен быть от 0 до 50, получено %s", in.WasteTolerancePercent.String())
	}
	return nil
}

func (s *ProductionService) GetMachines(ctx context.Context) ([]storage.Machine, error) {
	const op = "service.GetMachines"

	machines, err := s.storage.GetAllMachines(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return machines, nil
}

func (s *ProductionService) SetMachineStatus(ctx context.Context, id int64, status string) error {
	const op = "service.SetMachineStatus"

	switch status {
	case constants.MachineActive, constants.MachineMaintenance, constants.MachineInactive:
	default:
		return fmt.Errorf("%s: %w", op, apperr.InvalidInput("неизвестный статус машины %q", status))
	}

	if err := s.storage.UpdateMachineStatus(ctx, id, status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
