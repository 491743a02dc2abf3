package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы производственного заказа
const (
	POStatusPending      = "pending"
	POStatusInProduction = "in_production"
	POStatusInProgress   = "in_progress"
	POStatusPaused       = "paused"
	POStatusCompleted    = "completed"
	POStatusCancelled    = "cancelled"
)

type ProductionOrder struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"order_id"`
	ProductID         int64           `json:"product_id"`
	Punching          string          `json:"punching"`
	RequiresPrinting  bool            `json:"requires_printing"`
	QuantityKg        decimal.Decimal `json:"quantity_kg"`
	FinalQuantityKg   decimal.Decimal `json:"final_quantity_kg"`
	OverrunPercentage decimal.Decimal `json:"overrun_percentage"`
	OverrunReason     string          `json:"overrun_reason"`
	Status            string          `json:"status"`
	ProducedWeightKg  decimal.Decimal `json:"produced_weight_kg"`
	CutWeightKg       decimal.Decimal `json:"cut_weight_kg"`
	CompletionPercent decimal.Decimal `json:"completion_percent"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductionOrderSummary — производственный заказ в составе заказа клиента.
type ProductionOrderSummary struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type NewProductionOrder struct {
	OrderID           int64
	ProductID         int64
	Punching          string
	RequiresPrinting  bool
	QuantityKg        decimal.Decimal
	FinalQuantityKg   decimal.Decimal
	OverrunPercentage decimal.Decimal
	OverrunReason     string
}

// UpdateProductionOrder — изменения заказа, nil означает "не менять".
// Перепроизвод всегда пересчитывается на сервере.
type UpdateProductionOrder struct {
	ProductID         *int64
	Punching          *string
	RequiresPrinting  *bool
	QuantityKg        *decimal.Decimal
	FinalQuantityKg   *decimal.Decimal
	OverrunPercentage *decimal.Decimal
	OverrunReason     *string
	Status            *string
}

type Product struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Punching         string `json:"punching"`
	RequiresPrinting bool   `json:"requires_printing"`
}

// ProductionOrderReport — строка отчёта о выполнении.
type ProductionOrderReport struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"order_id"`
	Customer          string          `json:"customer"`
	ProductName       string          `json:"product_name"`
	Punching          string          `json:"punching"`
	Status            string          `json:"status"`
	QuantityKg        decimal.Decimal `json:"quantity_kg"`
	FinalQuantityKg   decimal.Decimal `json:"final_quantity_kg"`
	ProducedWeightKg  decimal.Decimal `json:"produced_weight_kg"`
	CutWeightKg       decimal.Decimal `json:"cut_weight_kg"`
	WasteKg           decimal.Decimal `json:"waste_kg"`
	CompletionPercent decimal.Decimal `json:"completion_percent"`
	RollsTotal        int             `json:"rolls_total"`
	RollsDone         int             `json:"rolls_done"`
	CreatedAt         time.Time       `json:"created_at"`
}

type ReportFilter struct {
	From     time.Time
	To       time.Time
	Statuses []string
}
