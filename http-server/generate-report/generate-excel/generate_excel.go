package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bag-mes/internal/storage"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, filter storage.ReportFilter) ([]byte, error)
}

// GenerateReportExcel — отчёт о выполнении за период ?from=&to= (YYYY-MM-DD),
// по умолчанию с начала месяца. ?status= можно повторять.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.generate-report.GenerateReportExcel"

		fromStr := r.URL.Query().Get("from")
		toStr := r.URL.Query().Get("to")

		now := time.Now()
		fDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		tDate := now

		if fromStr != "" {
			d, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				http.Error(w, "invalid from date", http.StatusBadRequest)
				return
			}
			fDate = d
		}
		if toStr != "" {
			d, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				http.Error(w, "invalid to date", http.StatusBadRequest)
				return
			}
			// включительно
			tDate = d.AddDate(0, 0, 1)
		}

		if !fDate.Before(tDate) {
			http.Error(w, "from must be before to", http.StatusBadRequest)
			return
		}

		filter := storage.ReportFilter{
			From:     fDate,
			To:       tDate,
			Statuses: r.URL.Query()["status"],
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Production_Report_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
