package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/service"
	"bag-mes/internal/storage"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

type ProductionOrderUpdater interface {
	UpdateProductionOrder(ctx context.Context, id int64, in service.UpdateProductionOrderInput) (*storage.ProductionOrder, error)
}

// Request — только изменяемые поля. final_quantity_kg и overrun_percentage
// пересчитываются сервером.
type Request struct {
	ProductID  *int64           `json:"product_id"`
	QuantityKg *decimal.Decimal `json:"quantity_kg"`
	Status     *string          `json:"status"`
}

func UpdateProductionOrder(log *slog.Logger, updater ProductionOrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-orders.update.UpdateProductionOrder"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Неверный JSON", slog.String("op", op), slog.String("error", err.Error()))
			response.BadRequest(w, r, "Неверные данные")
			return
		}

		if req.ProductID == nil && req.QuantityKg == nil && req.Status == nil {
			response.BadRequest(w, r, "Нет полей для обновления")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		po, err := updater.UpdateProductionOrder(ctx, id, service.UpdateProductionOrderInput{
			ProductID:  req.ProductID,
			QuantityKg: req.QuantityKg,
			Status:     req.Status,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, po)
	}
}
