// Package pdf genera el reporte de materiales consumidos por una tarea.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título de la tarea      │  Fecha de emisión        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Item | Unidad | Cantidad | Costo unit. | Costo       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL: Costo total de materiales                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LEDGER: fecha | tipo | cantidad | stock anterior → nuevo    │
//	│  FOOTER: QR con la referencia de la tarea                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vivero-api/internal/application/dto"
	"github.com/jhoicas/vivero-api/internal/application/inventory"
)

var _ inventory.ConsumptionPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 102, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.ConsumptionPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	appName string
	now     func() time.Time
}

// NewMarotoPDFGenerator construye el generador. appName aparece como autor del documento.
func NewMarotoPDFGenerator(appName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{appName: appName, now: time.Now}
}

// GenerateConsumptionPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateConsumptionPDF(_ context.Context, s *dto.ConsumptionSummaryResponse) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("pdf: resumen vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Materiales consumidos: "+s.Titulo, true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(s.Items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("La tarea no registra consumo de materiales.", props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableDetailRows(s.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(s.CostoTotal))

	if len(s.Movimientos) > 0 {
		m.AddRows(line.NewRow(3))
		for _, r := range ledgerRows(s.Movimientos) {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(s.IDTarea))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(s *dto.ConsumptionSummaryResponse, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("MATERIALES CONSUMIDOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(s.Titulo, "Tarea sin título"), props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
		),
		col.New(4).Add(
			text.New("Emitido: "+now.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d item(s)", len(s.Items)), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Item", 5, align.Left),
		h("Unidad", 2, align.Center),
		h("Cantidad", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Costo", 2, align.Right),
	)
}

func tableDetailRows(items []dto.ConsumptionItemDTO) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(nonEmpty(it.Nombre, it.IDItem), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(it.UnidadMedida, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(formatQty(it.Cantidad), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money(it.PrecioCosto), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money(it.Costo), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("COSTO TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(money(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// ledgerRows detalle de los movimientos del ledger que respaldan el consumo.
func ledgerRows(movs []dto.MovementResponse) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("MOVIMIENTOS DEL LEDGER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, m := range movs {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(m.Fecha.Format("02/01/2006 15:04"), props.Text{Size: 7, Color: colorGray})),
			col.New(2).Add(text.New(m.Tipo, props.Text{Size: 7})),
			col.New(2).Add(text.New(formatQty(m.Cantidad), props.Text{Size: 7, Align: align.Right})),
			col.New(5).Add(text.New(
				fmt.Sprintf("%s → %s   %s", formatQty(m.StockAnterior), formatQty(m.StockNuevo), m.Motivo),
				props.Text{Size: 7, Left: 3, Color: colorGray},
			)),
		))
	}
	return rows
}

func footerRow(taskID string) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr("/tareas/"+taskID+"/materiales", props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia de tarea: "+taskID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Costos valorizados al precio de costo vigente del item.", props.Text{
				Size: 7, Top: 10, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQty cantidades sin ceros decimales de sobra: 2.5000 -> 2.5, 3.0000 -> 3.
func formatQty(d decimal.Decimal) string {
	return d.Round(4).String()
}

// money "$" + parte entera con puntos de miles + coma decimal (2 dígitos).
func money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := "$" + formatMoney(intPart) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
