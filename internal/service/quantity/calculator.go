// Package quantity считает итоговое количество производственного заказа
// с учётом перепроизвода по типу вырубки.
package quantity

import (
	"strings"

	"bag-mes/internal/apperr"
	"bag-mes/internal/constants"

	"github.com/shopspring/decimal"
)

// Precision — знаков после запятой в килограммах.
const Precision = 2

type Result struct {
	FinalQuantityKg   decimal.Decimal `json:"final_quantity_kg"`
	OverrunPercentage decimal.Decimal `json:"overrun_percentage"`
	OverrunReason     string          `json:"overrun_reason"`
}

// Calculator не имеет изменяемого состояния, его можно делить между запросами.
type Calculator struct {
	strict bool
}

// NewCalculator: strict=true запрещает откат на процент по умолчанию
// для неизвестного типа вырубки.
func NewCalculator(strict bool) *Calculator {
	return &Calculator{strict: strict}
}

func (c *Calculator) Calculate(base decimal.Decimal, punching string) (Result, error) {
	if !base.IsPositive() {
		return Result{}, apperr.InvalidInput("количество должно быть больше 0, получено %s", base.String())
	}

	key := normalize(punching)

	pct, ok := constants.PunchingOverrun[key]
	reason := constants.PunchingOverrunReason[key]
	if !ok {
		if c.strict {
			return Result{}, apperr.UnknownProductType(punching)
		}
		pct = constants.DefaultOverrunPercent
		reason = constants.DefaultOverrunReason
	}

	overrun := decimal.NewFromFloat(pct)
	final := FinalQuantity(base, overrun)

	return Result{
		FinalQuantityKg:   final,
		OverrunPercentage: overrun,
		OverrunReason:     reason,
	}, nil
}

// IsKnown сообщает, есть ли тип вырубки в таблице перепроизвода.
func IsKnown(punching string) bool {
	_, ok := constants.PunchingOverrun[normalize(punching)]
	return ok
}

// FinalQuantity = base * (1 + pct/100), округление до Precision.
func FinalQuantity(base, overrunPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(overrunPct.Div(decimal.NewFromInt(100)))
	return base.Mul(factor).Round(Precision)
}

func normalize(punching string) string {
	return strings.ToLower(strings.TrimSpace(punching))
}
