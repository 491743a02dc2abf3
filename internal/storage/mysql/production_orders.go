package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bag-mes/internal/storage"
)

const productionOrderColumns = `id, order_id, product_id, punching, requires_printing, quantity_kg, final_quantity_kg,
	overrun_percentage, overrun_reason, status, produced_weight_kg, cut_weight_kg, completion_percent,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProductionOrder(row rowScanner) (storage.ProductionOrder, error) {
	var po storage.ProductionOrder
	err := row.Scan(&po.ID, &po.OrderID, &po.ProductID, &po.Punching, &po.RequiresPrinting,
		&po.QuantityKg, &po.FinalQuantityKg, &po.OverrunPercentage, &po.OverrunReason, &po.Status,
		&po.ProducedWeightKg, &po.CutWeightKg, &po.CompletionPercent, &po.CreatedAt, &po.UpdatedAt)
	return po, err
}

func insertProductionOrder(ctx context.Context, q querier, req storage.NewProductionOrder) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO production_orders
			(order_id, product_id, punching, requires_printing, quantity_kg, final_quantity_kg,
			 overrun_percentage, overrun_reason, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.OrderID, req.ProductID, req.Punching, req.RequiresPrinting, req.QuantityKg, req.FinalQuantityKg,
		req.OverrunPercentage, req.OverrunReason, storage.POStatusPending)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Storage) CreateProductionOrder(ctx context.Context, req storage.NewProductionOrder) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.CreateProductionOrder"

	id, err := insertProductionOrder(ctx, s.db, req)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения производственного заказа: %w", op, mapErr(err, "производственный заказ"))
	}

	return s.GetProductionOrder(ctx, id)
}

func (s *Storage) GetProductionOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.GetProductionOrder"

	po, err := getProductionOrder(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &po, nil
}

func getProductionOrder(ctx context.Context, q querier, id int64, forUpdate bool) (storage.ProductionOrder, error) {
	query := `SELECT ` + productionOrderColumns + ` FROM production_orders WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	po, err := scanProductionOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return storage.ProductionOrder{}, mapErr(err, fmt.Sprintf("производственный заказ id=%d", id))
	}
	return po, nil
}

// UpdateProductionOrder блокирует строку, отдаёт её в fn и применяет
// возвращённые изменения.
func (s *Storage) UpdateProductionOrder(ctx context.Context, id int64, fn func(snap storage.ProductionSnapshot) (storage.UpdateProductionOrder, error)) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.UpdateProductionOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	snap, err := s.lockProduction(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upd, err := fn(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set, args := buildProductionOrderUpdate(upd)
	if len(set) > 0 {
		args = append(args, id)
		query := `UPDATE production_orders SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("%s: ошибка обновления: %w", op, mapErr(err, "производственный заказ"))
		}
	}

	updated, err := getProductionOrder(ctx, tx, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &updated, nil
}

func buildProductionOrderUpdate(u storage.UpdateProductionOrder) ([]string, []interface{}) {
	var set []string
	var args []interface{}

	add := func(col string, v interface{}) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if u.ProductID != nil {
		add("product_id", *u.ProductID)
	}
	if u.Punching != nil {
		add("punching", *u.Punching)
	}
	if u.RequiresPrinting != nil {
		add("requires_printing", *u.RequiresPrinting)
	}
	if u.QuantityKg != nil {
		add("quantity_kg", *u.QuantityKg)
	}
	if u.FinalQuantityKg != nil {
		add("final_quantity_kg", *u.FinalQuantityKg)
	}
	if u.OverrunPercentage != nil {
		add("overrun_percentage", *u.OverrunPercentage)
	}
	if u.OverrunReason != nil {
		add("overrun_reason", *u.OverrunReason)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}

	return set, args
}

// saveProductionProgress пишет агрегаты, посчитанные в сервисе.
func saveProductionProgress(ctx context.Context, tx *sql.Tx, po storage.ProductionOrder) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE production_orders
		SET status = ?, produced_weight_kg = ?, cut_weight_kg = ?, completion_percent = ?
		WHERE id = ?`,
		po.Status, po.ProducedWeightKg, po.CutWeightKg, po.CompletionPercent, po.ID)
	return err
}
