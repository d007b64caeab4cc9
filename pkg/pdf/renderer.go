// Package pdf renders quotes as A4 documents with gofpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/money"
)

const (
	ContentType = "application/pdf"

	labelMaxRunes = 60
	tableWidth    = 190
	dateLayout    = "02/01/2006"
)

// Renderer builds the printable quote handed to clients.
type Renderer struct {
	companyName string
	now         func() time.Time
	compress    bool
}

// NewRenderer builds a renderer stamping documents with companyName.
func NewRenderer(companyName string) *Renderer {
	return &Renderer{
		companyName: companyName,
		now:         func() time.Time { return time.Now().UTC() },
		compress:    true,
	}
}

// ContentType reports the MIME type of rendered documents.
func (r *Renderer) ContentType() string {
	return ContentType
}

// Render draws the header, the line table, and the totals block.
func (r *Renderer) Render(ctx context.Context, quote *models.Quote) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, fmt.Errorf("quote is required")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.compress)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(tr("Devis "+quote.Reference), false)
	doc.SetCreator(r.companyName, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, tr(r.companyName))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 8, tr(fmt.Sprintf("Devis %s", quote.Reference)))
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, tr(fmt.Sprintf("Date : %s", quote.CreatedAt.Format(dateLayout))))
	doc.Ln(6)
	if quote.ValidUntil != nil {
		doc.Cell(0, 6, tr(fmt.Sprintf("Valable jusqu'au : %s", quote.ValidUntil.Format(dateLayout))))
		doc.Ln(6)
	}
	doc.Cell(0, 6, tr(fmt.Sprintf("Statut : %s", quote.Status)))
	doc.Ln(6)
	if quote.Message != nil {
		doc.Ln(2)
		doc.MultiCell(0, 5, tr(*quote.Message), "", "L", false)
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(80, 7, tr("Désignation"), "1", 0, "L", false, 0, "")
	doc.CellFormat(15, 7, tr("Qté"), "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 7, "PU HT", "1", 0, "R", false, 0, "")
	doc.CellFormat(20, 7, "TVA %", "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 7, "Total HT", "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 7, "Total TTC", "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, line := range quote.Lines {
		doc.CellFormat(80, 6, tr(trim(line.Label, labelMaxRunes)), "1", 0, "L", false, 0, "")
		doc.CellFormat(15, 6, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, money.Format(line.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(20, 6, money.Format(line.TaxRate), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, money.Format(line.TotalExclusive), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, money.Format(line.TotalInclusive), "1", 1, "R", false, 0, "")
		if line.Description != nil && *line.Description != "" {
			doc.SetFont("Helvetica", "I", 8)
			doc.MultiCell(tableWidth, 5, tr(*line.Description), "LRB", "L", false)
			doc.SetFont("Helvetica", "", 9)
		}
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 10)
	r.totalRow(doc, "Total HT", money.Format(quote.TotalExclusive))
	r.totalRow(doc, "Total TVA", money.Format(quote.TotalTax))
	r.totalRow(doc, "Total TTC", money.Format(quote.TotalInclusive))

	doc.Ln(6)
	doc.SetFont("Helvetica", "", 8)
	doc.Cell(0, 5, tr(fmt.Sprintf("Généré le %s", r.now().Format(time.RFC3339))))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write quote pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) totalRow(doc *gofpdf.Fpdf, label, amount string) {
	doc.CellFormat(140, 7, "", "", 0, "L", false, 0, "")
	doc.CellFormat(25, 7, label, "1", 0, "L", false, 0, "")
	doc.CellFormat(25, 7, amount+" EUR", "1", 1, "R", false, 0, "")
}

func trim(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
