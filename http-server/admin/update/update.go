package update

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

type AdminUpdater interface {
	UpdateSettings(ctx context.Context, in storage.Settings) error
	SetMachineStatus(ctx context.Context, id int64, status string) error
}

func UpdateSettingsAdmin(log *slog.Logger, updater AdminUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.update.UpdateSettingsAdmin"

		var settings storage.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			response.BadRequest(w, r, "Неверный JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateSettings(ctx, settings); err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		log.Info("Настройки производства обновлены",
			slog.String("overrun_tolerance_percent", settings.OverrunTolerancePercent.String()),
			slog.Bool("allow_last_roll_overrun", settings.AllowLastRollOverrun),
		)

		w.WriteHeader(http.StatusOK)
	}
}

type MachineStatusRequest struct {
	Status string `json:"status"`
}

func UpdateMachineStatusAdmin(log *slog.Logger, updater AdminUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.update.UpdateMachineStatusAdmin"

		id, ok := response.IDParam(r, "id")
		if !ok {
			response.BadRequest(w, r, "Invalid ID")
			return
		}

		var req MachineStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, r, "Неверный JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := strings.TrimSpace(req.Status)
		if err := updater.SetMachineStatus(ctx, id, status); err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, map[string]interface{}{"id": id, "status": status})
	}
}
