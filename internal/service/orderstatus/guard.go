// Package orderstatus — проверка переходов статуса заказа клиента.
package orderstatus

import (
	"sort"

	"bag-mes/internal/apperr"
	"bag-mes/internal/service/production"
	"bag-mes/internal/storage"
)

// allowedTransitions: ключ — текущий статус, значение — куда можно перейти.
// delivered и cancelled конечные.
var allowedTransitions = map[string][]string{
	storage.OrderPending:       {storage.OrderWaiting, storage.OrderForProduction, storage.OrderCancelled},
	storage.OrderWaiting:       {storage.OrderInProduction, storage.OrderForProduction, storage.OrderOnHold, storage.OrderCancelled},
	storage.OrderForProduction: {storage.OrderInProduction, storage.OrderInProgress, storage.OrderOnHold, storage.OrderCancelled},
	storage.OrderInProduction:  {storage.OrderPaused, storage.OrderCompleted, storage.OrderOnHold, storage.OrderInProgress},
	storage.OrderInProgress:    {storage.OrderPaused, storage.OrderCompleted, storage.OrderOnHold, storage.OrderInProduction},
	storage.OrderPaused:        {storage.OrderInProduction, storage.OrderInProgress, storage.OrderCancelled},
	storage.OrderOnHold:        {storage.OrderWaiting, storage.OrderForProduction, storage.OrderInProduction, storage.OrderCancelled},
	storage.OrderCompleted:     {storage.OrderDelivered},
	storage.OrderDelivered:     {},
	storage.OrderCancelled:     {},
}

func IsValidStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// Allowed возвращает копию списка разрешённых статусов.
func Allowed(current string) []string {
	next := allowedTransitions[current]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

func IsTerminal(status string) bool {
	return IsValidStatus(status) && len(allowedTransitions[status]) == 0
}

// Transition проверяет переход заказа. Повтор текущего статуса — no-op.
// children — производственные заказы этого заказа.
func Transition(current, requested string, children []storage.ProductionOrderSummary) error {
	if requested == current {
		return nil
	}

	if !IsValidStatus(requested) {
		return apperr.InvalidInput("неизвестный статус заказа %q", requested)
	}
	if !IsValidStatus(current) {
		return apperr.InvalidInput("заказ в неизвестном статусе %q", current)
	}

	allowed := Allowed(current)
	if !contains(allowed, requested) {
		return apperr.InvalidTransition(allowed, "переход %s -> %s запрещён", current, requested)
	}

	switch requested {
	case storage.OrderCompleted:
		if blocking := incomplete(children); len(blocking) > 0 {
			err := apperr.InvalidTransition(allowed, "нельзя завершить заказ: %d производственных заказов не завершены", len(blocking))
			err.(*apperr.Error).Blocking = blocking
			return err
		}
	case storage.OrderCancelled:
		if blocking := active(children); len(blocking) > 0 {
			err := apperr.InvalidTransition(allowed, "нельзя отменить заказ: %d производственных заказов в работе", len(blocking))
			err.(*apperr.Error).Blocking = blocking
			return err
		}
	}

	return nil
}

// incomplete — всё, что не completed и не cancelled.
func incomplete(children []storage.ProductionOrderSummary) []int64 {
	var ids []int64
	for _, c := range children {
		if !production.IsTerminalStatus(c.Status) {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func active(children []storage.ProductionOrderSummary) []int64 {
	var ids []int64
	for _, c := range children {
		if production.IsActiveStatus(c.Status) {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
