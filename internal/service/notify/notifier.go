// Package notify записывает производственные события. Доставка
// (WhatsApp/SMS) подключается снаружи через Sender.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bag-mes/internal/storage"

	"github.com/google/uuid"
)

const (
	KindOrderStatusChanged = "order_status_changed"
	KindOverrunRejected    = "overrun_rejected"
	KindProductionComplete = "production_order_completed"
	KindRollCompleted      = "roll_completed"
)

type NotificationStore interface {
	SaveNotification(ctx context.Context, n storage.Notification) error
	GetLatestNotifications(ctx context.Context, limit int) ([]storage.Notification, error)
}

// Sender — внешний канал доставки. Может быть nil.
type Sender interface {
	Send(ctx context.Context, n storage.Notification) error
}

// Notifier создаётся один раз в main и передаётся в сервисы.
type Notifier struct {
	log    *slog.Logger
	store  NotificationStore
	sender Sender
	now    func() time.Time
}

func New(log *slog.Logger, store NotificationStore, sender Sender) *Notifier {
	return &Notifier{log: log, store: store, sender: sender, now: time.Now}
}

// Notify не возвращает ошибку: уведомление не должно ломать бизнес-операцию.
func (n *Notifier) Notify(ctx context.Context, kind, entity string, entityID int64, format string, args ...any) {
	const op = "service.notify.Notify"

	if n == nil {
		return
	}

	note := storage.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Entity:    entity,
		EntityID:  entityID,
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: n.now(),
	}

	if err := n.store.SaveNotification(ctx, note); err != nil {
		n.log.Error("Ошибка сохранения уведомления", slog.String("op", op), slog.String("kind", kind), slog.String("error", err.Error()))
		return
	}

	if n.sender != nil {
		if err := n.sender.Send(ctx, note); err != nil {
			n.log.Warn("Уведомление не доставлено", slog.String("op", op), slog.String("id", note.ID), slog.String("error", err.Error()))
		}
	}

	n.log.Debug("notification recorded", slog.String("kind", kind), slog.Int64("entity_id", entityID))
}

func (n *Notifier) Latest(ctx context.Context, limit int) ([]storage.Notification, error) {
	const op = "service.notify.Latest"

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	list, err := n.store.GetLatestNotifications(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
