package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptDocument carries the printable fields of one fee payment receipt.
type ReceiptDocument struct {
	SchoolName  string
	ReceiptNo   string
	PaymentDate string
	StudentName string
	ClassName   string
	Category    string
	PaymentMode string
	AmountPaid  string
	Balance     string
	Remarks     string
	ProcessedBy string
}

// ReceiptPDF renders fee payment receipts.
type ReceiptPDF struct{}

// NewReceiptPDF constructs a receipt renderer.
func NewReceiptPDF() *ReceiptPDF {
	return &ReceiptPDF{}
}

// Render produces a single-page A5 receipt.
func (e *ReceiptPDF) Render(doc ReceiptDocument) ([]byte, error) {
	if doc.ReceiptNo == "" {
		return nil, fmt.Errorf("receipt requires a receipt number")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, strings.ToUpper(doc.SchoolName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "FEE PAYMENT RECEIPT", "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(42, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	line("Receipt No", doc.ReceiptNo)
	line("Date", doc.PaymentDate)
	line("Student", doc.StudentName)
	line("Class", doc.ClassName)
	line("Fee Category", doc.Category)
	line("Payment Mode", doc.PaymentMode)
	line("Amount Paid", doc.AmountPaid)
	line("Balance Due", doc.Balance)
	if doc.Remarks != "" {
		line("Remarks", doc.Remarks)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	footer := "Computer generated receipt."
	if doc.ProcessedBy != "" {
		footer = fmt.Sprintf("Processed by %s. %s", doc.ProcessedBy, footer)
	}
	pdf.CellFormat(0, 6, footer, "T", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// StatementPDF renders a tabular fee statement for one student.
type StatementPDF struct{}

// NewStatementPDF constructs a statement renderer.
func NewStatementPDF() *StatementPDF {
	return &StatementPDF{}
}

// Render creates a PDF document with a title and table body.
func (e *StatementPDF) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
