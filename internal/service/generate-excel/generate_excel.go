package generate_excel

import (
	"context"
	"fmt"

	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type GenerateExcelStorage interface {
	GetProductionReport(ctx context.Context, f storage.ReportFilter) ([]storage.ProductionOrderReport, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

const sheet = "Выполнение"

var headers = []string{
	"ПЗ", "Заказ", "Заказчик", "Продукт", "Вырубка", "Статус",
	"План, кг", "С перепроизв., кг", "Произведено, кг", "Нарезано, кг", "Отходы, кг",
	"Выполнение, %", "Рулонов", "Рулонов готово", "Создан",
}

// Колонки с весами, по ним считается итоговая строка.
var weightCols = []int{7, 8, 9, 10, 11}

// GenerateExcel строит xlsx-отчёт о выполнении производственных заказов.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, filter storage.ReportFilter) ([]byte, error) {
	rows, err := g.storage.GetProductionReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	numStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	totals := make([]decimal.Decimal, len(headers)+1)

	for i, p := range rows {
		row := i + 2
		values := []interface{}{
			p.ID, p.OrderID, p.Customer, p.ProductName, p.Punching, statusLabel(p.Status),
			p.QuantityKg.InexactFloat64(), p.FinalQuantityKg.InexactFloat64(),
			p.ProducedWeightKg.InexactFloat64(), p.CutWeightKg.InexactFloat64(), p.WasteKg.InexactFloat64(),
			p.CompletionPercent.InexactFloat64(), p.RollsTotal, p.RollsDone, p.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			f.SetCellValue(sheet, cellName(col+1, row), v)
		}

		totals[7] = totals[7].Add(p.QuantityKg)
		totals[8] = totals[8].Add(p.FinalQuantityKg)
		totals[9] = totals[9].Add(p.ProducedWeightKg)
		totals[10] = totals[10].Add(p.CutWeightKg)
		totals[11] = totals[11].Add(p.WasteKg)
	}

	// Итого
	totalRow := len(rows) + 2
	f.SetCellValue(sheet, cellName(1, totalRow), "Итого")
	for _, col := range weightCols {
		f.SetCellValue(sheet, cellName(col, totalRow), totals[col].InexactFloat64())
	}
	f.SetCellStyle(sheet, cellName(1, totalRow), cellName(len(headers), totalRow), headerStyle)
	f.SetCellStyle(sheet, cellName(7, 2), cellName(12, totalRow), numStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "B", 8)
	f.SetColWidth(sheet, "C", "D", 24)
	f.SetColWidth(sheet, "E", "O", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func statusLabel(status string) string {
	switch status {
	case storage.POStatusPending:
		return "ожидает"
	case storage.POStatusInProduction:
		return "в производстве"
	case storage.POStatusInProgress:
		return "в работе"
	case storage.POStatusPaused:
		return "пауза"
	case storage.POStatusCompleted:
		return "завершён"
	case storage.POStatusCancelled:
		return "отменён"
	default:
		return status
	}
}
