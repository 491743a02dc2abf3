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

type CutCreator interface {
	CreateCut(ctx context.Context, in service.CreateCutInput) (*storage.Cut, error)
}

type Request struct {
	RollID      int64           `json:"roll_id"`
	CutWeightKg decimal.Decimal `json:"cut_weight_kg"`
	Pieces      int             `json:"pieces"`
	PerformedBy int64           `json:"performed_by"`
}

func CreateCut(log *slog.Logger, creator CutCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cuts.save.CreateCut"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Неверный JSON", slog.String("op", op), slog.String("error", err.Error()))
			response.BadRequest(w, r, "Неверные данные")
			return
		}

		if req.RollID <= 0 {
			response.BadRequest(w, r, "roll_id обязателен")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// вес и количество проверяет сервис
		cut, err := creator.CreateCut(ctx, service.CreateCutInput{
			RollID:      req.RollID,
			CutWeightKg: req.CutWeightKg,
			Pieces:      req.Pieces,
			PerformedBy: req.PerformedBy,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		response.Created(w, r, cut)
	}
}
