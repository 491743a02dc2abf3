package storage

import "time"

// Статусы заказа клиента
const (
	OrderPending       = "pending"
	OrderWaiting       = "waiting"
	OrderForProduction = "for_production"
	OrderInProduction  = "in_production"
	OrderInProgress    = "in_progress"
	OrderPaused        = "paused"
	OrderOnHold        = "on_hold"
	OrderCompleted     = "completed"
	OrderDelivered     = "delivered"
	OrderCancelled     = "cancelled"
)

type Order struct {
	ID               int64                    `json:"id"`
	CustomerID       int64                    `json:"customer_id"`
	Status           string                   `json:"status"`
	Notes            string                   `json:"notes"`
	CreatedAt        time.Time                `json:"created_at"`
	ProductionOrders []ProductionOrderSummary `json:"production_orders"`
}

type NewOrder struct {
	CustomerID int64
	Notes      string
	Lines      []NewProductionOrder
}

type StatusChange struct {
	OrderID        int64  `json:"id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}
