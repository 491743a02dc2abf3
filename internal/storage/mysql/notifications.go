package mysql

import (
	"context"
	"fmt"

	"bag-mes/internal/storage"
)

func (s *Storage) SaveNotification(ctx context.Context, n storage.Notification) error {
	const op = "storage.mysql.SaveNotification"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, entity, entity_id, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.Entity, n.EntityID, n.Message, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения уведомления: %w", op, err)
	}

	return nil
}

func (s *Storage) GetLatestNotifications(ctx context.Context, limit int) ([]storage.Notification, error) {
	const op = "storage.mysql.GetLatestNotifications"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, entity, entity_id, message, created_at
		FROM notifications ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []storage.Notification{}
	for rows.Next() {
		var n storage.Notification
		if err := rows.Scan(&n.ID, &n.Kind, &n.Entity, &n.EntityID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		res = append(res, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return res, nil
}
