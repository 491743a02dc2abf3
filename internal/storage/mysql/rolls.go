package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"bag-mes/internal/apperr"
	"bag-mes/internal/storage"
)

const rollColumns = `id, seq, production_order_id, stage, weight_kg, cut_weight_total_kg, waste_kg, is_last_roll,
	created_by, printed_by, cut_by, film_machine_id, printing_machine_id, cutting_machine_id,
	created_at, printed_at, cut_started_at, cut_completed_at`

func scanRoll(row rowScanner) (storage.Roll, error) {
	var r storage.Roll
	var printedBy, cutBy, printingMachine, cuttingMachine sql.NullInt64
	var printedAt, cutStartedAt, cutCompletedAt sql.NullTime

	err := row.Scan(&r.ID, &r.Seq, &r.ProductionOrderID, &r.Stage, &r.WeightKg, &r.CutWeightTotalKg, &r.WasteKg,
		&r.IsLastRoll, &r.CreatedBy, &printedBy, &cutBy, &r.FilmMachineID, &printingMachine, &cuttingMachine,
		&r.CreatedAt, &printedAt, &cutStartedAt, &cutCompletedAt)
	if err != nil {
		return storage.Roll{}, err
	}

	r.PrintedBy = int64Ptr(printedBy)
	r.CutBy = int64Ptr(cutBy)
	r.PrintingMachineID = int64Ptr(printingMachine)
	r.CuttingMachineID = int64Ptr(cuttingMachine)
	r.PrintedAt = timePtr(printedAt)
	r.CutStartedAt = timePtr(cutStartedAt)
	r.CutCompletedAt = timePtr(cutCompletedAt)

	return r, nil
}

func getRoll(ctx context.Context, q querier, id int64, forUpdate bool) (storage.Roll, error) {
	query := `SELECT ` + rollColumns + ` FROM rolls WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	r, err := scanRoll(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return storage.Roll{}, mapErr(err, fmt.Sprintf("рулон id=%d", id))
	}
	return r, nil
}

// lockProduction блокирует производственный заказ и читает настройки и сводку
// по рулонам. Пока строка заказа заблокирована, рулоны заказа не меняются.
func (s *Storage) lockProduction(ctx context.Context, tx *sql.Tx, id int64) (storage.ProductionSnapshot, error) {
	po, err := getProductionOrder(ctx, tx, id, true)
	if err != nil {
		return storage.ProductionSnapshot{}, err
	}

	settings, err := s.loadSettings(ctx, tx, true)
	if err != nil {
		return storage.ProductionSnapshot{}, err
	}

	counts, err := countRolls(ctx, tx, id)
	if err != nil {
		return storage.ProductionSnapshot{}, err
	}

	return storage.ProductionSnapshot{ProductionOrder: po, Settings: settings, Rolls: counts}, nil
}

func countRolls(ctx context.Context, q querier, productionOrderID int64) (storage.RollCounts, error) {
	var c storage.RollCounts
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN stage <> ? THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(is_last_roll), 0)
		FROM rolls WHERE production_order_id = ?`,
		storage.StageDone, productionOrderID,
	).Scan(&c.Total, &c.Open, &c.HasLast)
	if err != nil {
		return storage.RollCounts{}, fmt.Errorf("ошибка подсчёта рулонов: %w", err)
	}
	return c, nil
}

// CreateRoll блокирует производственный заказ, fn проверяет перепроизвод на
// заблокированном снимке. Рулон и новые агрегаты заказа пишутся в той же транзакции.
func (s *Storage) CreateRoll(ctx context.Context, req storage.NewRoll, fn func(snap storage.ProductionSnapshot) (storage.ProductionOrder, error)) (*storage.Roll, error) {
	const op = "storage.mysql.CreateRoll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	snap, err := s.lockProduction(ctx, tx, req.ProductionOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next, err := fn(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM rolls WHERE production_order_id = ?`, req.ProductionOrderID,
	).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения номера рулона: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO rolls (seq, production_order_id, stage, weight_kg, is_last_roll, created_by, film_machine_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seq, req.ProductionOrderID, storage.StageFilm, req.WeightKg, req.IsLastRoll, req.CreatedBy, req.FilmMachineID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения рулона: %w", op, mapErr(err, "рулон"))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := saveProductionProgress(ctx, tx, next); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления производственного заказа: %w", op, err)
	}

	r, err := getRoll(ctx, tx, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &r, nil
}

func (s *Storage) GetRoll(ctx context.Context, id int64) (*storage.Roll, error) {
	const op = "storage.mysql.GetRoll"

	r, err := getRoll(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cuts, err := s.getCutsByRolls(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.Cuts = cuts[id]

	return &r, nil
}

func (s *Storage) GetRollsByProductionOrder(ctx context.Context, productionOrderID int64) ([]storage.Roll, error) {
	const op = "storage.mysql.GetRollsByProductionOrder"

	// 404 для несуществующего заказа, а не пустой список
	if _, err := getProductionOrder(ctx, s.db, productionOrderID, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rollColumns+` FROM rolls WHERE production_order_id = ? ORDER BY seq`, productionOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения рулонов: %w", op, err)
	}
	defer rows.Close()

	rolls := []storage.Roll{}
	var ids []int64
	for rows.Next() {
		r, err := scanRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		rolls = append(rolls, r)
		ids = append(ids, r.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	cuts, err := s.getCutsByRolls(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range rolls {
		rolls[i].Cuts = cuts[rolls[i].ID]
	}

	return rolls, nil
}

// lockRoll блокирует рулон, затем его производственный заказ, всегда в этом
// порядке. Машина резки берётся последней.
func (s *Storage) lockRoll(ctx context.Context, tx *sql.Tx, id int64) (storage.RollSnapshot, error) {
	r, err := getRoll(ctx, tx, id, true)
	if err != nil {
		return storage.RollSnapshot{}, err
	}

	ps, err := s.lockProduction(ctx, tx, r.ProductionOrderID)
	if err != nil {
		return storage.RollSnapshot{}, err
	}

	snap := storage.RollSnapshot{
		Roll:            r,
		ProductionOrder: ps.ProductionOrder,
		Settings:        ps.Settings,
		Rolls:           ps.Rolls,
	}

	if r.CuttingMachineID != nil {
		m, err := getMachine(ctx, tx, *r.CuttingMachineID, true)
		if err != nil {
			return storage.RollSnapshot{}, err
		}
		snap.CuttingMachine = &m
	}

	return snap, nil
}

// saveRoll пишет рулон, только если его этап не изменился с момента чтения.
func saveRoll(ctx context.Context, tx *sql.Tx, r storage.Roll, expectedStage string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE rolls
		SET stage = ?, cut_weight_total_kg = ?, waste_kg = ?, printed_by = ?, cut_by = ?,
			printing_machine_id = ?, cutting_machine_id = ?, printed_at = ?, cut_started_at = ?, cut_completed_at = ?
		WHERE id = ? AND stage = ?`,
		r.Stage, r.CutWeightTotalKg, r.WasteKg, nullInt64(r.PrintedBy), nullInt64(r.CutBy),
		nullInt64(r.PrintingMachineID), nullInt64(r.CuttingMachineID),
		nullTime(r.PrintedAt), nullTime(r.CutStartedAt), nullTime(r.CutCompletedAt),
		r.ID, expectedStage)
	if err != nil {
		return mapErr(err, fmt.Sprintf("рулон id=%d", r.ID))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Conflict("рулон id=%d уже изменён другим запросом", r.ID)
	}
	return nil
}

// AdvanceRoll переводит рулон на следующий этап. fn получает заблокированный
// снимок и возвращает новые значения рулона и производственного заказа.
func (s *Storage) AdvanceRoll(ctx context.Context, id int64, fn func(snap storage.RollSnapshot) (storage.Roll, storage.ProductionOrder, error)) (*storage.Roll, error) {
	const op = "storage.mysql.AdvanceRoll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	snap, err := s.lockRoll(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, po, err := fn(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := saveRoll(ctx, tx, r, snap.Roll.Stage); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := saveProductionProgress(ctx, tx, po); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления производственного заказа: %w", op, err)
	}

	saved, err := getRoll(ctx, tx, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &saved, nil
}
