package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Этапы рулона, порядок важен.
const (
	StageFilm     = "film"
	StagePrinting = "printing"
	StageCutting  = "cutting"
	StageDone     = "done"
)

type Roll struct {
	ID                int64           `json:"id"`
	Seq               int             `json:"seq"`
	ProductionOrderID int64           `json:"production_order_id"`
	Stage             string          `json:"stage"`
	WeightKg          decimal.Decimal `json:"weight_kg"`
	CutWeightTotalKg  decimal.Decimal `json:"cut_weight_total_kg"`
	WasteKg           decimal.Decimal `json:"waste_kg"`
	IsLastRoll        bool            `json:"is_last_roll"`

	CreatedBy int64  `json:"created_by"`
	PrintedBy *int64 `json:"printed_by"`
	CutBy     *int64 `json:"cut_by"`

	FilmMachineID     int64  `json:"film_machine_id"`
	PrintingMachineID *int64 `json:"printing_machine_id"`
	CuttingMachineID  *int64 `json:"cutting_machine_id"`

	CreatedAt      time.Time  `json:"created_at"`
	PrintedAt      *time.Time `json:"printed_at"`
	CutStartedAt   *time.Time `json:"cut_started_at"`
	CutCompletedAt *time.Time `json:"cut_completed_at"`

	Cuts []Cut `json:"cuts,omitempty"`
}

type NewRoll struct {
	ProductionOrderID int64
	WeightKg          decimal.Decimal
	IsLastRoll        bool
	CreatedBy         int64
	FilmMachineID     int64
}

// RollCounts — сводка по рулонам производственного заказа.
type RollCounts struct {
	Total   int
	Open    int // ещё не done
	HasLast bool
}

// ProductionSnapshot — заблокированный (FOR UPDATE) производственный заказ
// вместе с настройками и сводкой по рулонам.
type ProductionSnapshot struct {
	ProductionOrder ProductionOrder
	Settings        Settings
	Rolls           RollCounts
}

// RollSnapshot — заблокированный рулон и его производственный заказ.
// CuttingMachine заполнена, если рулон уже на участке резки.
type RollSnapshot struct {
	Roll            Roll
	ProductionOrder ProductionOrder
	Settings        Settings
	Rolls           RollCounts
	CuttingMachine  *Machine
}
