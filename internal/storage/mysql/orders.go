package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"bag-mes/internal/storage"
)

// CreateOrder сохраняет заказ клиента вместе с производственными заказами одной транзакцией.
func (s *Storage) CreateOrder(ctx context.Context, req storage.NewOrder) (*storage.Order, error) {
	const op = "storage.mysql.CreateOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_id, status, notes) VALUES (?, ?, ?)`,
		req.CustomerID, storage.OrderPending, req.Notes)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения заказа: %w", op, mapErr(err, fmt.Sprintf("клиент id=%d", req.CustomerID)))
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, line := range req.Lines {
		line.OrderID = orderID
		if _, err := insertProductionOrder(ctx, tx, line); err != nil {
			return nil, fmt.Errorf("%s: ошибка сохранения позиции: %w", op, mapErr(err, fmt.Sprintf("продукт id=%d", line.ProductID)))
		}
	}

	order, err := getOrder(ctx, tx, orderID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &order, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	order, err := getOrder(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

func getOrder(ctx context.Context, q querier, id int64, forUpdate bool) (storage.Order, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}

	var o storage.Order
	var notes sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, customer_id, status, notes, created_at FROM orders WHERE id = ?`+lock, id,
	).Scan(&o.ID, &o.CustomerID, &o.Status, &notes, &o.CreatedAt)
	if err != nil {
		return storage.Order{}, mapErr(err, fmt.Sprintf("заказ id=%d", id))
	}
	o.Notes = notes.String

	rows, err := q.QueryContext(ctx,
		`SELECT id, status FROM production_orders WHERE order_id = ? ORDER BY id`+lock, id)
	if err != nil {
		return storage.Order{}, fmt.Errorf("ошибка получения производственных заказов: %w", err)
	}
	defer rows.Close()

	o.ProductionOrders = []storage.ProductionOrderSummary{}
	for rows.Next() {
		var po storage.ProductionOrderSummary
		if err := rows.Scan(&po.ID, &po.Status); err != nil {
			return storage.Order{}, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		o.ProductionOrders = append(o.ProductionOrders, po)
	}

	if err := rows.Err(); err != nil {
		return storage.Order{}, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return o, nil
}

// UpdateOrderStatus блокирует заказ и его производственные заказы, fn решает,
// какой статус записать. Пока транзакция открыта, статусы детей не меняются.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id int64, fn func(o storage.Order) (string, error)) (*storage.StatusChange, error) {
	const op = "storage.mysql.UpdateOrderStatus"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	order, err := getOrder(ctx, tx, id, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next, err := fn(order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	change := &storage.StatusChange{OrderID: id, PreviousStatus: order.Status, Status: next}
	if next == order.Status {
		return change, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, next, id); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления статуса: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return change, nil
}
