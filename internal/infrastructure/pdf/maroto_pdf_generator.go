// Package pdf genera el formulario de transferencia de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Inventory Transfer #N  │  Fecha + Registrado por   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Item | SKU | Cantidad | Dirección                   │
//	│  TABLA: Origen | Destino (sector + ubicación)               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Motivo / Notas (opcionales)                                │
//	│  FIRMAS: Requested by | Received by                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/punchlist-api/internal/application/transfer"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 41, Blue: 59}
	colorGray    = &props.Color{Red: 71, Green: 85, Blue: 105}
)

const timeLayout = "Jan 2, 2006 15:04 MST"

// ── Generator ─────────────────────────────────────────────────────────────────

// TransferFormRenderer implementa transfer.FormRenderer usando Maroto v2.
type TransferFormRenderer struct{}

var _ transfer.FormRenderer = (*TransferFormRenderer)(nil)

// NewTransferFormRenderer construye el generador.
func NewTransferFormRenderer() *TransferFormRenderer { return &TransferFormRenderer{} }

// RenderTransferForm genera el PDF y devuelve sus bytes.
func (g *TransferFormRenderer) RenderTransferForm(ctx context.Context, data *transfer.FormData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("pdf: datos de formulario vacíos")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle(fmt.Sprintf("Inventory Transfer #%d", data.MovementID), true).
		WithAuthor(nonEmpty(data.Actor, "System"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow([]string{"Item", "SKU", "Quantity", "Direction"}, []int{5, 3, 2, 2}))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(tableRow([]string{
		data.ItemName,
		nonEmpty(data.ItemSKU, "—"),
		fmt.Sprintf("%d", data.Amount),
		DirectionLabel(data.Direction),
	}, []int{5, 3, 2, 2}))
	m.AddRows(row.New(4))

	m.AddRows(tableHeaderRow([]string{"From", "To"}, []int{6, 6}))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(tableRow([]string{
		LocationBlock(data.SourceSector, data.SourceLocation),
		LocationBlock(data.TargetSector, data.TargetLocation),
	}, []int{6, 6}))

	if r := strings.TrimSpace(data.Reason); r != "" {
		m.AddRows(sectionRows("Reason", r)...)
	}
	if n := strings.TrimSpace(data.Notes); n != "" {
		m.AddRows(sectionRows("Notes", n)...)
	}

	m.AddRows(row.New(6))
	m.AddRows(sectionTitle("Sign-off"))
	m.AddRows(row.New(14))
	m.AddRows(signatureRow())

	m.AddRows(row.New(8))
	m.AddRows(row.New(5).Add(col.New(12).Add(
		text.New("Generated "+data.GeneratedAt.UTC().Format(timeLayout), props.Text{
			Size: 7, Color: colorGray, Align: align.Right,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título con id del movimiento (izq) y fecha + actor (der).
func headerRow(data *transfer.FormData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(fmt.Sprintf("Inventory Transfer #%d", data.MovementID), props.Text{
				Style: fontstyle.Bold, Size: 15, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New("Date: "+data.MovedAt.UTC().Format(timeLayout), props.Text{
				Size: 9, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Recorded by: "+nonEmpty(data.Actor, "System"), props.Text{
				Size: 9, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2, Left: 1, Color: colorPrimary,
		})))
	}
	return row.New(8).Add(cols...)
}

func tableRow(values []string, sizes []int) core.Row {
	height := 8.0
	for _, v := range values {
		if n := strings.Count(v, "\n") + 1; float64(n)*5+3 > height {
			height = float64(n)*5 + 3
		}
	}
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, col.New(sizes[i]).Add(text.New(v, props.Text{
			Size: 9, Top: 2, Left: 1,
		})))
	}
	return row.New(height).Add(cols...)
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(title, props.Text{
		Style: fontstyle.Bold, Size: 10, Top: 3, Color: colorPrimary,
	})))
}

func sectionRows(title, body string) []core.Row {
	return []core.Row{
		sectionTitle(title),
		row.New(float64(strings.Count(body, "\n")+1)*5 + 2).Add(col.New(12).Add(
			text.New(body, props.Text{Size: 9, Top: 1}),
		)),
	}
}

// signatureRow: dos líneas de firma (solicitante y receptor).
func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(5).Add(
			line.New(props.Line{Color: colorPrimary, Thickness: 0.4}),
			text.New(label, props.Text{Size: 8, Top: 3, Color: colorGray}),
		)
	}
	return row.New(12).Add(sig("Requested by"), col.New(2), sig("Received by"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// DirectionLabel texto legible de la dirección del movimiento.
func DirectionLabel(direction string) string {
	switch direction {
	case "in":
		return "Stock In"
	case "out":
		return "Stock Out"
	}
	return direction
}

// LocationBlock sector y, si existe, la ubicación en una segunda línea.
func LocationBlock(sector, location string) string {
	sector = nonEmpty(strings.TrimSpace(sector), "Unassigned")
	if loc := strings.TrimSpace(location); loc != "" {
		return sector + "\n" + loc
	}
	return sector
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
