package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/storage"

	"github.com/go-chi/render"
)

type StatusChanger interface {
	ChangeOrderStatus(ctx context.Context, id int64, status string) (*storage.StatusChange, error)
}

type Request struct {
	Status string `json:"status"`
}

func ChangeOrderStatus(log *slog.Logger, changer StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.status.ChangeOrderStatus"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		change, err := changer.ChangeOrderStatus(ctx, id, strings.TrimSpace(req.Status))
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, change)
	}
}
