package mysql

import (
	"context"
	"fmt"
	"strings"

	"bag-mes/internal/storage"
)

func buildReportFilters(f storage.ReportFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if !f.From.IsZero() {
		conditions = append(conditions, "po.created_at >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		conditions = append(conditions, "po.created_at < ?")
		args = append(args, f.To)
	}
	if len(f.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("po.status IN (%s)", placeholders(len(f.Statuses))))
		args = append(args, toInterfaceSlice(f.Statuses)...)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// GetProductionReport — выполнение производственных заказов для Excel-отчёта.
func (s *Storage) GetProductionReport(ctx context.Context, f storage.ReportFilter) ([]storage.ProductionOrderReport, error) {
	const op = "storage.mysql.GetProductionReport"

	where, args := buildReportFilters(f)

	query := fmt.Sprintf(`
		SELECT po.id, po.order_id, COALESCE(c.name, ''), p.name, po.punching, po.status,
			po.quantity_kg, po.final_quantity_kg, po.produced_weight_kg, po.cut_weight_kg,
			COALESCE(SUM(r.waste_kg), 0), po.completion_percent,
			COUNT(r.id), COALESCE(SUM(r.stage = 'done'), 0), po.created_at
		FROM production_orders po
		JOIN orders o ON o.id = po.order_id
		LEFT JOIN customers c ON c.id = o.customer_id
		JOIN products p ON p.id = po.product_id
		LEFT JOIN rolls r ON r.production_order_id = po.id
		%s
		GROUP BY po.id, po.order_id, c.name, p.name, po.punching, po.status, po.quantity_kg,
			po.final_quantity_kg, po.produced_weight_kg, po.cut_weight_kg, po.completion_percent, po.created_at
		ORDER BY po.created_at, po.id`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения отчёта: %w", op, err)
	}
	defer rows.Close()

	var res []storage.ProductionOrderReport
	for rows.Next() {
		var r storage.ProductionOrderReport
		err := rows.Scan(&r.ID, &r.OrderID, &r.Customer, &r.ProductName, &r.Punching, &r.Status,
			&r.QuantityKg, &r.FinalQuantityKg, &r.ProducedWeightKg, &r.CutWeightKg,
			&r.WasteKg, &r.CompletionPercent, &r.RollsTotal, &r.RollsDone, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		res = append(res, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return res, nil
}
