package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bag-mes/internal/storage"
)

// querier — общее у *sql.DB и *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Storage) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	const op = "storage.mysql.GetProduct"

	p := &storage.Product{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, punching, requires_printing FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Punching, &p.RequiresPrinting)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err, fmt.Sprintf("продукт id=%d", id)))
	}

	return p, nil
}

func (s *Storage) GetMachine(ctx context.Context, id int64) (*storage.Machine, error) {
	const op = "storage.mysql.GetMachine"

	m, err := getMachine(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &m, nil
}

// getMachine с lock берёт строку LOCK IN SHARE MODE: смена статуса машины
// ждёт конца транзакции, которая на ней работает.
func getMachine(ctx context.Context, q querier, id int64, lock bool) (storage.Machine, error) {
	query := `SELECT id, name, section, status FROM machines WHERE id = ?`
	if lock {
		query += ` LOCK IN SHARE MODE`
	}

	var m storage.Machine
	err := q.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Section, &m.Status)
	if err != nil {
		return storage.Machine{}, mapErr(err, fmt.Sprintf("машина id=%d", id))
	}
	return m, nil
}

func (s *Storage) GetAllMachines(ctx context.Context) ([]storage.Machine, error) {
	const op = "storage.mysql.GetAllMachines"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, section, status FROM machines ORDER BY section, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения машин: %w", op, err)
	}
	defer rows.Close()

	var machines []storage.Machine
	for rows.Next() {
		var m storage.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Section, &m.Status); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		machines = append(machines, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return machines, nil
}

func (s *Storage) UpdateMachineStatus(ctx context.Context, id int64, status string) error {
	const op = "storage.mysql.UpdateMachineStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE machines SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// RowsAffected = 0 и когда статус не изменился, поэтому проверяем существование
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM machines WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%s: %w", op, mapErr(err, fmt.Sprintf("машина id=%d", id)))
		}
	}

	return nil
}

func (s *Storage) GetSettings(ctx context.Context) (storage.Settings, error) {
	const op = "storage.mysql.GetSettings"

	settings, err := s.loadSettings(ctx, s.db, false)
	if err != nil {
		return storage.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// loadSettings читает строку настроек, при её отсутствии берёт значения из конфига.
func (s *Storage) loadSettings(ctx context.Context, q querier, lock bool) (storage.Settings, error) {
	query := `SELECT overrun_tolerance_percent, allow_last_roll_overrun, waste_tolerance_percent, qr_prefix
		FROM production_settings WHERE id = 1`
	if lock {
		query += ` LOCK IN SHARE MODE`
	}

	var st storage.Settings
	err := q.QueryRowContext(ctx, query).
		Scan(&st.OverrunTolerancePercent, &st.AllowLastRollOverrun, &st.WasteTolerancePercent, &st.QRPrefix)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return storage.Settings{}, fmt.Errorf("ошибка чтения настроек: %w", err)
	}

	if st.QRPrefix == "" {
		st.QRPrefix = s.defaults.QRPrefix
	}
	return st, nil
}

func (s *Storage) SaveSettings(ctx context.Context, st storage.Settings) error {
	const op = "storage.mysql.SaveSettings"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO production_settings
			(id, overrun_tolerance_percent, allow_last_roll_overrun, waste_tolerance_percent, qr_prefix)
		VALUES (1, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			overrun_tolerance_percent = VALUES(overrun_tolerance_percent),
			allow_last_roll_overrun = VALUES(allow_last_roll_overrun),
			waste_tolerance_percent = VALUES(waste_tolerance_percent),
			qr_prefix = VALUES(qr_prefix)
	`, st.OverrunTolerancePercent, st.AllowLastRollOverrun, st.WasteTolerancePercent, st.QRPrefix)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения настроек: %w", op, mapErr(err, "настройки"))
	}

	return nil
}
