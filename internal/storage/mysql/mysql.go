package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"bag-mes/internal/apperr"
	"bag-mes/internal/config"
	"bag-mes/internal/storage"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// Номера ошибок MySQL
const (
	errNoReferencedRow = 1452
	errCheckViolation  = 3819
)

type Storage struct {
	db       *sql.DB
	defaults storage.Settings
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewWithDB(db, DefaultSettings(cfg.Production)), nil
}

// NewWithDB — для тестов и для уже открытого пула.
func NewWithDB(db *sql.DB, defaults storage.Settings) *Storage {
	return &Storage{db: db, defaults: defaults}
}

func DefaultSettings(p config.Production) storage.Settings {
	return storage.Settings{
		OverrunTolerancePercent: decimal.NewFromFloat(p.OverrunTolerancePercent),
		AllowLastRollOverrun:    p.AllowLastRollOverrun,
		WasteTolerancePercent:   decimal.NewFromFloat(p.WasteTolerancePercent),
		QRPrefix:                p.QRPrefix,
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Migrate создаёт таблицы, если их нет.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.mysql.Migrate"

	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// mapErr переводит ошибки драйвера в виды apperr.
func mapErr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s не найден", what)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errNoReferencedRow:
			return apperr.NotFound("%s: связанная запись не найдена", what)
		case errCheckViolation:
			return apperr.InvalidInput("%s: %s", what, mysqlErr.Message)
		}
	}

	return err
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

func toInterfaceSlice[T any](items []T) []interface{} {
	res := make([]interface{}, len(items))
	for i, it := range items {
		res[i] = it
	}
	return res
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	x := v.Int64
	return &x
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
