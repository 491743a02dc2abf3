// Package apperr содержит таксономию бизнес-ошибок производства.
// Все ошибки ядра разворачиваются (errors.Is) в один из sentinel-видов,
// HTTP-слой отображает вид в статус ответа.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput              = errors.New("InvalidInput")
	ErrUnknownProductType        = errors.New("UnknownProductType")
	ErrRemainingQuantityExceeded = errors.New("RemainingQuantityExceeded")
	ErrMachineInactive           = errors.New("MachineInactive")
	ErrInvalidTransition         = errors.New("InvalidTransition")
	ErrNotFound                  = errors.New("NotFound")
	ErrConflict                  = errors.New("Conflict")
)

// Error — бизнес-ошибка с деталями для пользователя.
type Error struct {
	Kind    error
	Message string

	Remaining *decimal.Decimal
	Allowed   []string
	Blocking  []int64
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Remaining != nil {
		fmt.Fprintf(&b, " (remaining=%s kg)", e.Remaining.StringFixed(2))
	}
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, " (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func UnknownProductType(punching string) error {
	return &Error{Kind: ErrUnknownProductType, Message: fmt.Sprintf("неизвестный тип вырубки %q", punching)}
}

func RemainingQuantityExceeded(remaining decimal.Decimal, format string, args ...any) error {
	r := remaining.Round(2)
	return &Error{Kind: ErrRemainingQuantityExceeded, Message: fmt.Sprintf(format, args...), Remaining: &r}
}

func MachineInactive(machineID int64, status string) error {
	return &Error{Kind: ErrMachineInactive, Message: fmt.Sprintf("машина id=%d не активна (статус %q)", machineID, status)}
}

func InvalidTransition(allowed []string, format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Message: fmt.Sprintf(format, args...), Allowed: allowed}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// Details достаёт *Error из цепочки обёрток.
func Details(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
