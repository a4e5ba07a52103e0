package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

func TestWriteSanctionLetter(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "sanction_abc123.pdf")

	letter := SanctionLetter{
		ReferenceID:  "abc123",
		CustomerName: "Asha Verma",
		Offer: models.Offer{
			Amount:        decimal.NewFromInt(100000),
			TenureMonths:  24,
			InterestRate:  decimal.NewFromFloat(13.5),
			MonthlyEMI:    decimal.RequireFromString("5291.67"),
			Status:        models.OfferApproved,
			ReasonSummary: "Within pre-approved limit",
		},
		AuditLines: []string{
			`Sales agent: "100000 for 24 months at 13.5%"`,
			`Underwriting agent: "Within pre-approved limit"`,
		},
	}

	if err := WriteSanctionLetter(out, letter); err != nil {
		t.Fatalf("WriteSanctionLetter: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty PDF file")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with PDF header")
	}
}

func TestWriteSanctionLetterTruncatesLongAuditLines(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sanction.pdf")

	long := make([]byte, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	letter := SanctionLetter{
		ReferenceID:  "ref-1",
		CustomerName: "Test",
		Offer: models.Offer{
			Amount:       decimal.NewFromInt(50000),
			TenureMonths: 12,
			InterestRate: decimal.NewFromFloat(10.5),
			MonthlyEMI:   decimal.RequireFromString("4604.17"),
			Status:       models.OfferApproved,
		},
		AuditLines: []string{string(long)},
	}

	if err := WriteSanctionLetter(out, letter); err != nil {
		t.Fatalf("WriteSanctionLetter: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("Stat: %v", err)
	}
}
