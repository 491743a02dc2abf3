// Package roll — жизненный цикл рулона: film -> printing -> cutting -> done.
// Переходы только вперёд, каждый переход проверяет машину участка.
package roll

import (
	"time"

	"bag-mes/internal/apperr"
	"bag-mes/internal/constants"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var stageOrder = map[string]int{
	storage.StageFilm:     0,
	storage.StagePrinting: 1,
	storage.StageCutting:  2,
	storage.StageDone:     3,
}

func IsValidStage(stage string) bool {
	_, ok := stageOrder[stage]
	return ok
}

// NextStages — куда можно перейти из from. Печать пропускается только
// если продукт её не требует.
func NextStages(from string, requiresPrinting bool) []string {
	switch from {
	case storage.StageFilm:
		if requiresPrinting {
			return []string{storage.StagePrinting}
		}
		return []string{storage.StagePrinting, storage.StageCutting}
	case storage.StagePrinting:
		return []string{storage.StageCutting}
	case storage.StageCutting:
		return []string{storage.StageDone}
	}
	return nil
}

func CanAdvance(from, to string, requiresPrinting bool) bool {
	if stageOrder[to] <= stageOrder[from] {
		return false
	}
	for _, s := range NextStages(from, requiresPrinting) {
		if s == to {
			return true
		}
	}
	return false
}

func checkAdvance(r storage.Roll, to string, requiresPrinting bool) error {
	if !IsValidStage(r.Stage) {
		return apperr.InvalidInput("неизвестный этап рулона %q", r.Stage)
	}
	if !CanAdvance(r.Stage, to, requiresPrinting) {
		return apperr.InvalidTransition(NextStages(r.Stage, requiresPrinting),
			"рулон id=%d: переход %s -> %s запрещён", r.ID, r.Stage, to)
	}
	return nil
}

// CheckMachine — машина должна стоять на нужном участке и быть active.
func CheckMachine(m storage.Machine, section string) error {
	if m.Section != section {
		return apperr.InvalidInput("машина id=%d относится к участку %q, ожидается %q", m.ID, m.Section, section)
	}
	if m.Status != constants.MachineActive {
		return apperr.MachineInactive(m.ID, m.Status)
	}
	return nil
}

// Print: film -> printing.
func Print(r storage.Roll, m storage.Machine, by int64, now time.Time) (storage.Roll, error) {
	if err := checkAdvance(r, storage.StagePrinting, true); err != nil {
		return r, err
	}
	if err := CheckMachine(m, constants.SectionPrinting); err != nil {
		return r, err
	}

	r.Stage = storage.StagePrinting
	r.PrintedBy = &by
	r.PrintingMachineID = &m.ID
	r.PrintedAt = &now
	return r, nil
}

// StartCutting: printing -> cutting, либо film -> cutting без печати.
func StartCutting(r storage.Roll, m storage.Machine, by int64, requiresPrinting bool, now time.Time) (storage.Roll, error) {
	if err := checkAdvance(r, storage.StageCutting, requiresPrinting); err != nil {
		return r, err
	}
	if err := CheckMachine(m, constants.SectionCutting); err != nil {
		return r, err
	}

	r.Stage = storage.StageCutting
	r.CutBy = &by
	r.CuttingMachineID = &m.ID
	r.CutStartedAt = &now
	return r, nil
}

// AddCut добавляет вес реза на машине m. cut_weight_total не может превысить вес рулона.
func AddCut(r storage.Roll, m storage.Machine, weight decimal.Decimal) (storage.Roll, error) {
	if !weight.IsPositive() {
		return r, apperr.InvalidInput("вес реза должен быть больше 0, получено %s", weight.String())
	}
	if r.Stage != storage.StageCutting {
		return r, apperr.InvalidTransition([]string{storage.StageCutting},
			"рулон id=%d на этапе %q, резать можно только на этапе cutting", r.ID, r.Stage)
	}
	if err := CheckMachine(m, constants.SectionCutting); err != nil {
		return r, err
	}

	available := Available(r)
	if weight.GreaterThan(available) {
		return r, apperr.RemainingQuantityExceeded(available,
			"вес реза %s кг больше остатка рулона %s кг", weight.StringFixed(2), available.StringFixed(2))
	}

	r.CutWeightTotalKg = r.CutWeightTotalKg.Add(weight)
	return r, nil
}

// Available — сколько ещё можно нарезать с рулона.
func Available(r storage.Roll) decimal.Decimal {
	a := r.WeightKg.Sub(r.CutWeightTotalKg)
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}

// MinCutWeight — порог нарезки для завершения: weight * (1 - waste%/100).
func MinCutWeight(r storage.Roll, wasteTolerancePct decimal.Decimal) decimal.Decimal {
	keep := hundred.Sub(wasteTolerancePct).Div(hundred)
	return r.WeightKg.Mul(keep).Round(2)
}

// Complete: cutting -> done на машине резки m. Остаток веса уходит в отходы.
func Complete(r storage.Roll, m storage.Machine, wasteTolerancePct decimal.Decimal, now time.Time) (storage.Roll, error) {
	if err := checkAdvance(r, storage.StageDone, true); err != nil {
		return r, err
	}
	if err := CheckMachine(m, constants.SectionCutting); err != nil {
		return r, err
	}

	threshold := MinCutWeight(r, wasteTolerancePct)
	if r.CutWeightTotalKg.LessThan(threshold) {
		return r, apperr.InvalidInput("рулон id=%d: нарезано %s кг из %s кг, минимум для завершения %s кг",
			r.ID, r.CutWeightTotalKg.StringFixed(2), r.WeightKg.StringFixed(2), threshold.StringFixed(2))
	}

	r.Stage = storage.StageDone
	r.WasteKg = r.WeightKg.Sub(r.CutWeightTotalKg)
	r.CutCompletedAt = &now
	return r, nil
}
