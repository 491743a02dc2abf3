package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/service"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
)

type ProductionOrderCreator interface {
	CreateProductionOrder(ctx context.Context, in service.CreateProductionOrderInput) (*storage.ProductionOrder, error)
}

type Request struct {
	OrderID    int64           `json:"order_id"`
	ProductID  int64           `json:"product_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

func CreateProductionOrder(log *slog.Logger, creator ProductionOrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-orders.save.CreateProductionOrder"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Неверный JSON", slog.String("op", op), slog.String("error", err.Error()))
			response.BadRequest(w, r, "Неверные данные")
			return
		}

		if req.OrderID <= 0 || req.ProductID <= 0 {
			response.BadRequest(w, r, "order_id и product_id обязательны")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		po, err := creator.CreateProductionOrder(ctx, service.CreateProductionOrderInput{
			OrderID:    req.OrderID,
			ProductID:  req.ProductID,
			QuantityKg: req.QuantityKg,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		response.Created(w, r, po)
	}
}
