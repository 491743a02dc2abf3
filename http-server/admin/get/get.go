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

type AdminProvider interface {
	GetSettings(ctx context.Context) (storage.Settings, error)
	GetMachines(ctx context.Context) ([]storage.Machine, error)
}

func GetSettingsAdmin(log *slog.Logger, provider AdminProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.get.GetSettingsAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		settings, err := provider.GetSettings(ctx)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, settings)
	}
}

func GetMachinesAdmin(log *slog.Logger, provider AdminProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.get.GetMachinesAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		machines, err := provider.GetMachines(ctx)
		if err != nil {
			response.Error(w, r, log, op, err)
			return
		}

		if machines == nil {
			machines = []storage.Machine{}
		}

		render.JSON(w, r, machines)
	}
}
