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

type OrderCreator interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*storage.Order, error)
}

type Line struct {
	ProductID  int64           `json:"product_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// Request — поля перепроизвода от клиента не принимаются.
type Request struct {
	CustomerID int64  `json:"customer_id"`
	Notes      string `json:"notes"`
	Lines      []Line `json:"lines"`
}

func CreateOrder(log *slog.Logger, creator OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.save.CreateOrder"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Неверный JSON", slog.String("op", op), slog.String("error", err.Error()))
			response.BadRequest(w, r, "Неверные данные")
			return
		}

		in := service.CreateOrderInput{CustomerID: req.CustomerID, Notes: req.Notes}
		for _, l := range req.Lines {
			in.Lines = append(in.Lines, service.OrderLineInput{ProductID: l.ProductID, QuantityKg: l.QuantityKg})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := creator.CreateOrder(ctx, in)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.Info("Заказ создан", slog.Int64("id", order.ID), slog.Int("lines", len(order.ProductionOrders)))

		response.Created(w, r, order)
	}
}
