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

type RollCreator interface {
	CreateRoll(ctx context.Context, in service.CreateRollInput) (*storage.Roll, error)
}

type Request struct {
	ProductionOrderID int64           `json:"production_order_id"`
	WeightKg          decimal.Decimal `json:"weight_kg"`
	IsLastRoll        bool            `json:"is_last_roll"`
	CreatedBy         int64           `json:"created_by"`
	FilmMachineID     int64           `json:"film_machine_id"`
}

func CreateRoll(log *slog.Logger, creator RollCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rolls.save.CreateRoll"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Неверный JSON", slog.String("op", op), slog.String("error", err.Error()))
			response.BadRequest(w, r, "Неверные данные")
			return
		}

		if req.ProductionOrderID <= 0 || req.FilmMachineID <= 0 {
			response.BadRequest(w, r, "production_order_id и film_machine_id обязательны")
			return
		}
		if !req.WeightKg.IsPositive() {
			response.BadRequest(w, r, "weight_kg должен быть больше 0")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		roll, err := creator.CreateRoll(ctx, service.CreateRollInput{
			ProductionOrderID: req.ProductionOrderID,
			WeightKg:          req.WeightKg,
			IsLastRoll:        req.IsLastRoll,
			CreatedBy:         req.CreatedBy,
			FilmMachineID:     req.FilmMachineID,
		})
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		response.Created(w, r, roll)
	}
}
