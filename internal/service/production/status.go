package production

import (
	"sort"

	"bag-mes/internal/apperr"
	"bag-mes/internal/storage"
)

// allowedTransitions — ручная смена статуса производственного заказа.
// В pending вернуться нельзя, completed и cancelled конечные.
var allowedTransitions = map[string][]string{
	storage.POStatusPending:      {storage.POStatusInProduction, storage.POStatusInProgress, storage.POStatusPaused, storage.POStatusCancelled},
	storage.POStatusInProduction: {storage.POStatusInProgress, storage.POStatusPaused, storage.POStatusCompleted, storage.POStatusCancelled},
	storage.POStatusInProgress:   {storage.POStatusInProduction, storage.POStatusPaused, storage.POStatusCompleted, storage.POStatusCancelled},
	storage.POStatusPaused:       {storage.POStatusInProduction, storage.POStatusInProgress, storage.POStatusCancelled},
	storage.POStatusCompleted:    {},
	storage.POStatusCancelled:    {},
}

func IsValidStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func AllowedStatuses(current string) []string {
	next := append([]string(nil), allowedTransitions[current]...)
	sort.Strings(next)
	return next
}

// CheckOpen — по закрытому заказу рулоны и резы больше не двигаются.
func CheckOpen(po storage.ProductionOrder) error {
	if IsTerminalStatus(po.Status) {
		return apperr.InvalidTransition(nil, "производственный заказ id=%d в статусе %q", po.ID, po.Status)
	}
	return nil
}

// CheckTransition проверяет ручную смену статуса. Тот же статус — не ошибка.
// Завершить можно только заказ, у которого есть рулоны и все они done.
func CheckTransition(po storage.ProductionOrder, requested string, rolls storage.RollCounts) error {
	if !IsValidStatus(requested) {
		return apperr.InvalidInput("неизвестный статус %q", requested)
	}
	if requested == po.Status {
		return nil
	}

	allowed := allowedTransitions[po.Status]
	if !contains(allowed, requested) {
		return apperr.InvalidTransition(AllowedStatuses(po.Status),
			"производственный заказ id=%d: переход %s -> %s запрещён", po.ID, po.Status, requested)
	}

	if requested == storage.POStatusCompleted && (rolls.Total == 0 || rolls.Open > 0) {
		return apperr.InvalidTransition(AllowedStatuses(po.Status),
			"производственный заказ id=%d: незавершённых рулонов %d из %d", po.ID, rolls.Open, rolls.Total)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
