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

type RollGetter interface {
	GetRoll(ctx context.Context, id int64) (*storage.Roll, error)
}

// GetRoll — рулон вместе с резами.
func GetRoll(log *slog.Logger, getter RollGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rolls.get.GetRoll"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		roll, err := getter.GetRoll(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, roll)
	}
}
