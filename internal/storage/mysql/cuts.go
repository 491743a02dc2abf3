package mysql

import (
	"context"
	"fmt"

	"bag-mes/internal/storage"
)

// CreateCut записывает рез и обновлённые суммы рулона и заказа одной транзакцией.
func (s *Storage) CreateCut(ctx context.Context, req storage.NewCut, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Cut, error) {
	const op = "storage.mysql.CreateCut"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	snap, err := s.lockRoll(ctx, tx, req.RollID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, po, err := fn(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO cuts (roll_id, cut_weight_kg, pieces, performed_by) VALUES (?, ?, ?, ?)`,
		req.RollID, req.CutWeightKg, req.Pieces, req.PerformedBy)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения реза: %w", op, mapErr(err, "рез"))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := saveRoll(ctx, tx, r, snap.Roll.Stage); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := saveProductionProgress(ctx, tx, po); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления производственного заказа: %w", op, err)
	}

	cut := &storage.Cut{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, roll_id, cut_weight_kg, pieces, performed_by, created_at FROM cuts WHERE id = ?`, id,
	).Scan(&cut.ID, &cut.RollID, &cut.CutWeightKg, &cut.Pieces, &cut.PerformedBy, &cut.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return cut, nil
}

func (s *Storage) getCutsByRolls(ctx context.Context, rollIDs []int64) (map[int64][]storage.Cut, error) {
	res := make(map[int64][]storage.Cut, len(rollIDs))
	if len(rollIDs) == 0 {
		return res, nil
	}

	query := fmt.Sprintf(`
		SELECT id, roll_id, cut_weight_kg, pieces, performed_by, created_at
		FROM cuts WHERE roll_id IN (%s) ORDER BY id`, placeholders(len(rollIDs)))

	rows, err := s.db.QueryContext(ctx, query, toInterfaceSlice(rollIDs)...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения резов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c storage.Cut
		if err := rows.Scan(&c.ID, &c.RollID, &c.CutWeightKg, &c.Pieces, &c.PerformedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		res[c.RollID] = append(res[c.RollID], c)
	}

	return res, rows.Err()
}
