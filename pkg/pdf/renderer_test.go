package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
)

func TestRendererProducesPDF(t *testing.T) {
	message := "Merci pour votre confiance, événement prévu en juin."
	validUntil := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	quote := &models.Quote{
		ID:             uuid.New(),
		Reference:      "DEV-2026-ABCDEF12",
		Status:         enums.QuoteStatusSent,
		Message:        &message,
		ValidUntil:     &validUntil,
		TotalExclusive: decimal.RequireFromString("600"),
		TotalTax:       decimal.RequireFromString("76.5"),
		TotalInclusive: decimal.RequireFromString("676.5"),
		CreatedAt:      time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Lines: []models.QuoteLine{
			{Label: "Location de salle", Quantity: 2, UnitPrice: decimal.NewFromInt(150), TaxRate: decimal.NewFromInt(20), TotalExclusive: decimal.NewFromInt(300), TotalInclusive: decimal.NewFromInt(360)},
			{Label: "Traiteur", Quantity: 1, UnitPrice: decimal.NewFromInt(300), TaxRate: decimal.RequireFromString("5.5"), TotalExclusive: decimal.NewFromInt(300), TotalInclusive: decimal.RequireFromString("316.5")},
		},
	}

	renderer := NewRenderer("EventDesk")
	out, err := renderer.Render(context.Background(), quote)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", out[:min(len(out), 8)])
	}
	if renderer.ContentType() != "application/pdf" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRendererPrintsLineDescriptions(t *testing.T) {
	description := "Buffet froid pour 40 couverts"
	quote := &models.Quote{
		Reference: "DEV-2026-0000BEEF",
		Status:    enums.QuoteStatusDraft,
		CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Lines: []models.QuoteLine{
			{Label: "Traiteur", Description: &description, Quantity: 1, UnitPrice: decimal.NewFromInt(300), TaxRate: decimal.NewFromInt(20)},
			{Label: "Sonorisation", Quantity: 1, UnitPrice: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20)},
		},
	}

	renderer := NewRenderer("EventDesk")
	renderer.compress = false
	out, err := renderer.Render(context.Background(), quote)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, text := range []string{"Traiteur", description, "Sonorisation"} {
		if !bytes.Contains(out, []byte("("+text+")")) {
			t.Fatalf("expected %q in rendered document", text)
		}
	}
}

func TestRendererHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer("EventDesk").Render(ctx, &models.Quote{}); err == nil {
		t.Fatal("expected canceled context to abort rendering")
	}
}

func TestRendererRejectsNilQuote(t *testing.T) {
	if _, err := NewRenderer("EventDesk").Render(context.Background(), nil); err == nil {
		t.Fatal("expected nil quote to fail")
	}
}

func TestTrim(t *testing.T) {
	if got := trim("short", 10); got != "short" {
		t.Fatalf("unexpected trim %q", got)
	}
	if got := trim("abcdefghijkl", 8); got != "abcde..." {
		t.Fatalf("unexpected trim %q", got)
	}
}
