// Package document renders printable exports.
package document

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/format"
)

// ContractPDF writes a one-document summary of c with its payment schedule.
func ContractPDF(w io.Writer, c *domain.Contract, orgName string, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle(c.Title, true)
	pdf.SetAuthor(orgName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(c.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(orgName), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	end := "Open-ended"
	if c.EndDate != nil {
		end = format.Date(*c.EndDate)
	}
	rows := [][2]string{
		{"Athlete", c.AthleteName()},
		{"Partner", c.Partner},
		{"Type", string(c.Type)},
		{"Status", string(c.Status)},
		{"Value", format.Currency(c.Value)},
		{"Start", format.Date(c.StartDate)},
		{"End", end},
	}
	for _, r := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(r[1]), "", 1, "L", false, 0, "")
	}

	if c.Terms != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(c.Terms), "", "", false)
	}

	if len(c.PaymentSchedule) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Payment schedule", "", 1, "L", false, 0, "")
		paymentTable(pdf, tr, c)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 4, "Generated "+format.DateTime(generatedAt), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render contract pdf: %w", err)
	}
	return nil
}

func paymentTable(pdf *gofpdf.Fpdf, tr func(string) string, c *domain.Contract) {
	widths := []float64{30, 80, 35, 35}
	header := []string{"Due", "Description", "Amount", "Paid"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, p := range c.PaymentSchedule {
		paid := "No"
		if p.Paid {
			paid = "Yes"
			if p.PaidDate != nil {
				paid = format.Date(*p.PaidDate)
			}
		}
		pdf.CellFormat(widths[0], 6, format.Date(p.DueDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(p.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, format.Currency(p.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, paid, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1], 6, "Scheduled / paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 6, format.Currency(c.ScheduledTotal()), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 6, format.Currency(c.PaidTotal()), "1", 0, "L", false, 0, "")
	pdf.Ln(-1)
}
