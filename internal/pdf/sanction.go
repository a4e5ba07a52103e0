package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"loanflow/internal/models"
)

const maxAuditLineLen = 120

// SanctionLetter holds everything rendered into the approval PDF.
type SanctionLetter struct {
	ReferenceID  string
	CustomerName string
	Offer        models.Offer
	AuditLines   []string
	IssuedAt     time.Time
}

// WriteSanctionLetter renders the letter to outputPath, creating
// parent directories as needed.
func WriteSanctionLetter(outputPath string, letter SanctionLetter) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	issued := letter.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Loanflow Sanction Letter", false)
	doc.SetAuthor("Loanflow", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Loanflow Sanction Letter")
	doc.Ln(8)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 8, fmt.Sprintf("Date: %s    Ref: %s", issued.Format("2006-01-02"), letter.ReferenceID))
	doc.Ln(12)

	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 8, "Customer: "+letter.CustomerName)
	doc.Ln(10)

	doc.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Approved Amount: " + letter.Offer.Amount.StringFixed(2),
		fmt.Sprintf("Tenure (months): %d", letter.Offer.TenureMonths),
		"Interest rate (% p.a.): " + letter.Offer.InterestRate.StringFixed(2),
		"EMI (approx): " + letter.Offer.MonthlyEMI.StringFixed(2),
		"Status: " + letter.Offer.Status,
		"Reason summary: " + letter.Offer.ReasonSummary,
	} {
		doc.Cell(0, 6, line)
		doc.Ln(6)
	}

	if len(letter.AuditLines) > 0 {
		doc.Ln(4)
		doc.SetFont("Helvetica", "B", 11)
		doc.Cell(0, 7, "Audit: Agent decisions (summary)")
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 9)
		for _, line := range letter.AuditLines {
			if len(line) > maxAuditLineLen {
				line = line[:maxAuditLineLen]
			}
			doc.Cell(0, 5, line)
			doc.Ln(5)
		}
	}

	return doc.OutputFileAndClose(outputPath)
}
