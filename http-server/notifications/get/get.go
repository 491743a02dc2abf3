package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bag-mes/http-server/response"
	"bag-mes/internal/storage"

	"github.com/go-chi/render"
)

type NotificationReader interface {
	Latest(ctx context.Context, limit int) ([]storage.Notification, error)
}

func GetNotifications(log *slog.Logger, reader NotificationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notifications.get.GetNotifications"

		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				response.BadRequest(w, r, "invalid limit")
				return
			}
			limit = n
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := reader.Latest(ctx, limit)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}
