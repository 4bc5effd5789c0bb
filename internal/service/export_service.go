package service

import (
	"context"
	"fmt"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	sheetOrder     = "Auftrag"
	sheetLines     = "Positionen"
	moneyNumFmt    = 4 // #,##0.00
	gateHeaderRow  = 4
	firstLineRow   = 2
	defaultColumnW = 16
)

// WorkbookMIME is the content type of exported workbooks.
const WorkbookMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	orderHeaders = []string{"Tor", "Typ", "Breite (cm)", "Höhe (cm)", "Glashöhe (cm)", "Torfläche (m²)", "Menge", "Aufschlag (%)", "Zwischensumme", "Netto", "Brutto"}
	lineHeaders  = []string{"Tor", "Produkt", "Einheit", "Menge", "Seiten", "Sonderpreis", "Einzelpreis", "Gesamt"}
)

// ExportService renders an order with its gates as an xlsx workbook.
type ExportService struct {
	orders  *OrderService
	catalog appstate.CatalogSource
	vatRate float64
	logger  *zap.Logger
}

func NewExportService(orders *OrderService, catalog appstate.CatalogSource, vatRate float64, logger *zap.Logger) *ExportService {
	return &ExportService{
		orders:  orders,
		catalog: catalog,
		vatRate: vatRate,
		logger:  logger,
	}
}

// OrderWorkbook returns the workbook bytes and a file name for the order.
// Gate totals are the stored ones; line prices are re-derived from the
// current catalog.
func (s *ExportService) OrderWorkbook(ctx context.Context, orderID string) ([]byte, string, error) {
	order, err := s.orders.GetWithGates(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	prices, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load catalog: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	idx, err := f.NewSheet(sheetOrder)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(sheetLines); err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, "", err
	}

	if err := s.writeOrderSheet(f, styles, order); err != nil {
		return nil, "", err
	}
	if err := s.writeLineSheet(f, styles, order, prices); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("order workbook exported",
		zap.String("order_id", order.ID),
		zap.Int("gates", len(order.Gates)),
	)
	return buf.Bytes(), order.OrderNumber + ".xlsx", nil
}

type workbookStyles struct {
	title  int
	header int
	money  int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var st workbookStyles
	var err error
	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return st, fmt.Errorf("failed to create style: %w", err)
	}
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create style: %w", err)
	}
	if st.money, err = f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt}); err != nil {
		return st, fmt.Errorf("failed to create style: %w", err)
	}
	return st, nil
}

func (s *ExportService) writeOrderSheet(f *excelize.File, st workbookStyles, order *domain.Order) error {
	var gross float64
	for _, g := range order.Gates {
		gross += g.InklMwst
	}

	p := message.NewPrinter(language.German)
	title := p.Sprintf("Auftrag %s, %d Tore, brutto %.2f €", order.OrderNumber, len(order.Gates), gross)

	cells := map[string]interface{}{
		"A1": title,
		"A2": "Status",
		"B2": string(order.Status),
		"C2": "Erstellt",
		"D2": order.CreatedAt.Format("02.01.2006"),
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheetOrder, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheetOrder, "A1", "A1", st.title); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}
	if err := writeHeader(f, sheetOrder, gateHeaderRow, orderHeaders, st.header); err != nil {
		return err
	}

	row := gateHeaderRow + 1
	for _, g := range order.Gates {
		values := []interface{}{
			gateLabel(g), g.GateType, g.Breite, g.Hoehe, g.Glashoehe, g.Torflaeche,
			g.Quantity, g.Aufschlag, g.Subtotal, g.ExklusiveMwst, g.InklMwst,
		}
		if err := writeRow(f, sheetOrder, row, values); err != nil {
			return err
		}
		if err := styleRange(f, sheetOrder, 9, 11, row, st.money); err != nil {
			return err
		}
		row++
	}

	if len(order.Gates) > 0 {
		if err := f.SetCellValue(sheetOrder, cellName(10, row), "Summe"); err != nil {
			return fmt.Errorf("failed to write total: %w", err)
		}
		if err := f.SetCellValue(sheetOrder, cellName(11, row), gross); err != nil {
			return fmt.Errorf("failed to write total: %w", err)
		}
		if err := styleRange(f, sheetOrder, 11, 11, row, st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetOrder, "A", "K", defaultColumnW)
}

func (s *ExportService) writeLineSheet(f *excelize.File, st workbookStyles, order *domain.Order, prices *gate.PriceList) error {
	if err := writeHeader(f, sheetLines, 1, lineHeaders, st.header); err != nil {
		return err
	}

	row := firstLineRow
	for _, g := range order.Gates {
		cfg, err := gate.FromRecord(g)
		if err != nil {
			s.logger.Warn("skipping malformed gate in export", zap.String("gate_id", g.ID), zap.Error(err))
			continue
		}

		pricing, err := gate.ComputePricing(cfg.Areas, cfg.Products, cfg.MarkupPercent, s.vatRate, prices)
		if err != nil {
			s.logger.Warn("gate no longer prices against the catalog",
				zap.String("gate_id", g.ID),
				zap.Error(err),
			)
			for _, p := range cfg.Products {
				values := []interface{}{gateLabel(g), p.CatalogRef, "", p.Quantity, p.Sides, p.UnitPriceOverride != nil}
				if err := writeRow(f, sheetLines, row, values); err != nil {
					return err
				}
				row++
			}
			continue
		}

		for _, line := range pricing.Lines {
			values := []interface{}{
				gateLabel(g), line.Name, string(line.Unit), line.Quantity, line.Sides, line.Overridden,
				gate.Round2(line.UnitPrice), gate.Round2(line.Total),
			}
			if err := writeRow(f, sheetLines, row, values); err != nil {
				return err
			}
			if err := styleRange(f, sheetLines, 7, 8, row, st.money); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(sheetLines, "A", "H", defaultColumnW)
}

func gateLabel(g domain.Gate) string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, row, values); err != nil {
		return err
	}
	return styleRange(f, sheet, 1, len(headers), row, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, fromCol, toCol, row, style int) error {
	if err := f.SetCellStyle(sheet, cellName(fromCol, row), cellName(toCol, row), style); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	return nil
}
