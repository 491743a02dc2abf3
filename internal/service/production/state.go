// Package production — состояние производственного заказа и проверка
// перепроизвода. Только чистые функции, без доступа к базе.
package production

import (
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type State struct {
	Quantity          decimal.Decimal
	FinalQuantity     decimal.Decimal
	OverrunPercentage decimal.Decimal
	Status            string
	ProducedWeight    decimal.Decimal
	CutWeight         decimal.Decimal
}

func FromOrder(po storage.ProductionOrder) State {
	return State{
		Quantity:          po.QuantityKg,
		FinalQuantity:     po.FinalQuantityKg,
		OverrunPercentage: po.OverrunPercentage,
		Status:            po.Status,
		ProducedWeight:    po.ProducedWeightKg,
		CutWeight:         po.CutWeightKg,
	}
}

// Remaining = max(0, final - produced)
func (s State) Remaining() decimal.Decimal {
	r := s.FinalQuantity.Sub(s.ProducedWeight)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ToleranceKg — запас сверх итогового количества. Допуск задаётся
// от базового количества и уже частично занят расчётным перепроизводом.
func (s State) ToleranceKg(tolerancePct decimal.Decimal) decimal.Decimal {
	band := s.Quantity.Mul(tolerancePct).Div(hundred)
	overrun := s.FinalQuantity.Sub(s.Quantity)
	t := band.Sub(overrun)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t.Round(2)
}

// CompletionPercent — доля нарезанного веса от итогового, не больше 100.
func (s State) CompletionPercent() decimal.Decimal {
	if !s.FinalQuantity.IsPositive() {
		return decimal.Zero
	}
	p := s.CutWeight.Mul(hundred).Div(s.FinalQuantity)
	if p.GreaterThan(hundred) {
		p = hundred
	}
	return p.Round(2)
}

func (s State) IsTerminal() bool {
	return s.Status == storage.POStatusCompleted || s.Status == storage.POStatusCancelled
}

func (s State) IsActive() bool {
	return IsActiveStatus(s.Status)
}

// IsActiveStatus: в работе считаются in_progress и in_production.
func IsActiveStatus(status string) bool {
	return status == storage.POStatusInProgress || status == storage.POStatusInProduction
}

func IsTerminalStatus(status string) bool {
	return status == storage.POStatusCompleted || status == storage.POStatusCancelled
}

// AddRoll возвращает состояние после приёма рулона. Первый рулон
// переводит заказ из pending в in_production.
func (s State) AddRoll(weight decimal.Decimal) State {
	s.ProducedWeight = s.ProducedWeight.Add(weight)
	if s.Status == storage.POStatusPending {
		s.Status = storage.POStatusInProduction
	}
	return s
}

func (s State) AddCut(weight decimal.Decimal) State {
	s.CutWeight = s.CutWeight.Add(weight)
	return s
}
