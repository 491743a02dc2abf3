package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bag-mes/internal/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error     string           `json:"error"`
	Message   string           `json:"message"`
	Remaining *decimal.Decimal `json:"remaining_kg,omitempty"`
	Allowed   []string         `json:"allowed,omitempty"`
	Blocking  []int64          `json:"blocking_production_orders,omitempty"`
}

// StatusFor отображает вид ошибки в HTTP-статус.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrUnknownProductType),
		errors.Is(err, apperr.ErrRemainingQuantityExceeded),
		errors.Is(err, apperr.ErrMachineInactive),
		errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error пишет ошибку в ответ. Внутренние ошибки логируются и наружу не отдаются.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	status := StatusFor(err)

	resp := ErrorResponse{Error: "Internal", Message: "Внутренняя ошибка сервера"}
	if details, ok := apperr.Details(err); ok && status != http.StatusInternalServerError {
		resp = ErrorResponse{
			Error:     details.Kind.Error(),
			Message:   details.Message,
			Remaining: details.Remaining,
			Allowed:   details.Allowed,
			Blocking:  details.Blocking,
		}
	}

	if status == http.StatusInternalServerError {
		log.Error("Внутренняя ошибка", slog.String("op", op), slog.String("error", err.Error()))
	} else {
		log.Warn("Запрос отклонён", slog.String("op", op), slog.String("error", err.Error()))
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// BadRequest — ошибка разбора запроса до обращения к сервису.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: apperr.ErrInvalidInput.Error(), Message: message})
}

func Created(w http.ResponseWriter, r *http.Request, v interface{}) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

// IDParam читает положительный int64 из параметра пути.
func IDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
