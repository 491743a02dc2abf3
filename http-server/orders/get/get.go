package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/storage"

	"github.com/go-chi/render"
)

type OrderGetter interface {
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
}

func GetOrder(log *slog.Logger, getter OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrder"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := getter.GetOrder(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, order)
	}
}
