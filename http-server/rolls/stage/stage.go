package stage

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
)

type RollStager interface {
	PrintRoll(ctx context.Context, in service.StageInput) (*storage.Roll, error)
	StartCutting(ctx context.Context, in service.StageInput) (*storage.Roll, error)
	CompleteRoll(ctx context.Context, rollID int64) (*storage.Roll, error)
}

type Request struct {
	MachineID int64 `json:"machine_id"`
	By        int64 `json:"by"`
}

func PrintRoll(log *slog.Logger, stager RollStager) http.HandlerFunc {
	return advance(log, "handlers.rolls.stage.PrintRoll", stager.PrintRoll)
}

func StartCutting(log *slog.Logger, stager RollStager) http.HandlerFunc {
	return advance(log, "handlers.rolls.stage.StartCutting", stager.StartCutting)
}

func advance(log *slog.Logger, op string, fn func(ctx context.Context, in service.StageInput) (*storage.Roll, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if req.MachineID <= 0 {
			response.BadRequest(w, r, "machine_id обязателен")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		roll, err := fn(ctx, service.StageInput{RollID: id, MachineID: req.MachineID, By: req.By})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, roll)
	}
}

func CompleteRoll(log *slog.Logger, stager RollStager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rolls.stage.CompleteRoll"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		roll, err := stager.CompleteRoll(ctx, id)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, roll)
	}
}
