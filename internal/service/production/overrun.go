package production

import (
	"bag-mes/internal/apperr"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
)

// Guard проверяет, можно ли принять новый вес в производственный заказ.
type Guard struct {
	TolerancePercent     decimal.Decimal
	AllowLastRollOverrun bool
}

func NewGuard(settings storage.Settings) Guard {
	return Guard{
		TolerancePercent:     settings.OverrunTolerancePercent,
		AllowLastRollOverrun: settings.AllowLastRollOverrun,
	}
}

// Admit ничего не сохраняет: вызывающий сам пишет рулон и агрегаты
// в той же транзакции, где был прочитан state.
func (g Guard) Admit(state State, weight decimal.Decimal, isLastRoll bool) error {
	if !weight.IsPositive() {
		return apperr.InvalidInput("вес должен быть больше 0, получено %s", weight.String())
	}

	if state.IsTerminal() {
		return apperr.InvalidTransition(nil, "производственный заказ в статусе %q не принимает рулоны", state.Status)
	}

	// последний рулон физически нельзя произвести частично
	if isLastRoll && g.AllowLastRollOverrun {
		return nil
	}

	remaining := state.Remaining()
	limit := remaining.Add(state.ToleranceKg(g.TolerancePercent))

	if weight.GreaterThan(limit) {
		return apperr.RemainingQuantityExceeded(remaining,
			"вес %s кг превышает остаток %s кг", weight.StringFixed(2), remaining.StringFixed(2))
	}

	return nil
}
