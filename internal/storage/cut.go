package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cut struct {
	ID          int64           `json:"id"`
	RollID      int64           `json:"roll_id"`
	CutWeightKg decimal.Decimal `json:"cut_weight_kg"`
	Pieces      int             `json:"pieces"`
	PerformedBy int64           `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

type NewCut struct {
	RollID      int64
	CutWeightKg decimal.Decimal
	Pieces      int
	PerformedBy int64
}
