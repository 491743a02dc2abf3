package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/service"
	"bag-mes/internal/storage"

	"github.com/go-chi/render"
)

type ProductionOrderGetter interface {
	GetProductionOrder(ctx context.Context, id int64) (*service.ProductionOrderView, error)
	GetRolls(ctx context.Context, productionOrderID int64) ([]storage.Roll, error)
}

// GetProductionOrder отдаёт заказ вместе с остатком и процентом выполнения.
func GetProductionOrder(log *slog.Logger, getter ProductionOrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-orders.get.GetProductionOrder"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := getter.GetProductionOrder(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}

func GetRolls(log *slog.Logger, getter ProductionOrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-orders.get.GetRolls"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rolls, err := getter.GetRolls(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, rolls)
	}
}
