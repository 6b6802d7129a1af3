package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/models"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/export"
)

type exportPaymentReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.FeePaymentDetail, error)
	CollectionRows(ctx context.Context, from, to *time.Time) ([]models.FeePaymentDetail, error)
}

// ExportService renders printable receipts and collection exports.
type ExportService struct {
	payments   exportPaymentReader
	receipts   *export.ReceiptPDF
	statements *export.StatementPDF
	csv        *export.CSVExporter
	schoolName string
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(payments exportPaymentReader, schoolName string, logger *zap.Logger) *ExportService {
	if schoolName == "" {
		schoolName = "School Fee Office"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payments:   payments,
		receipts:   export.NewReceiptPDF(),
		statements: export.NewStatementPDF(),
		csv:        export.NewCSVExporter(),
		schoolName: schoolName,
		logger:     logger,
	}
}

// Receipt renders the PDF receipt for one payment.
func (s *ExportService) Receipt(ctx context.Context, paymentID string) ([]byte, string, error) {
	detail, err := s.payments.FindDetailByID(ctx, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "fee payment not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee payment")
	}

	doc := export.ReceiptDocument{
		SchoolName:  s.schoolName,
		ReceiptNo:   detail.ReceiptNo,
		PaymentDate: detail.PaymentDate.Format("02 Jan 2006"),
		StudentName: detail.StudentName,
		ClassName:   detail.ClassName,
		Category:    detail.CategoryName,
		PaymentMode: string(detail.PaymentMode),
		AmountPaid:  detail.AmountPaid.StringFixed(2),
		Balance:     detail.BalanceDue.StringFixed(2),
		Remarks:     detail.Remarks,
		ProcessedBy: detail.ProcessedBy,
	}
	payload, err := s.receipts.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	filename := fmt.Sprintf("receipt_%s.pdf", detail.ReceiptNo)
	return payload, filename, nil
}

// CollectionsCSV exports payment rows for the given date window.
func (s *ExportService) CollectionsCSV(ctx context.Context, from, to *time.Time) ([]byte, string, error) {
	rows, err := s.payments.CollectionRows(ctx, from, to)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection rows")
	}

	dataset := export.Dataset{
		Headers: []string{"Receipt No", "Date", "Student", "Class", "Category", "Mode", "Amount", "Balance", "Processed By"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Receipt No":   row.ReceiptNo,
			"Date":         row.PaymentDate.Format("2006-01-02"),
			"Student":      row.StudentName,
			"Class":        row.ClassName,
			"Category":     row.CategoryName,
			"Mode":         string(row.PaymentMode),
			"Amount":       row.AmountPaid.StringFixed(2),
			"Balance":      row.BalanceDue.StringFixed(2),
			"Processed By": row.ProcessedBy,
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render collections csv")
	}
	filename := fmt.Sprintf("fee_collections_%s.csv", time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}

// StatementPDF renders a student statement as a printable table.
func (s *ExportService) StatementPDF(statement *models.StudentStatement) ([]byte, string, error) {
	dataset := export.Dataset{
		Headers: []string{"Category", "Due Date", "Final", "Paid", "Balance"},
	}
	for _, a := range statement.Assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Category": a.CategoryName,
			"Due Date": a.DueDate.Format("2006-01-02"),
			"Final":    a.FinalAmount.StringFixed(2),
			"Paid":     a.PaidAmount.StringFixed(2),
			"Balance":  a.Balance().StringFixed(2),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Category": "TOTAL",
		"Final":    statement.TotalDue.StringFixed(2),
		"Paid":     statement.TotalPaid.StringFixed(2),
		"Balance":  statement.Balance.StringFixed(2),
	})

	title := fmt.Sprintf("Fee Statement - %s (%s)", statement.Student.FullName, statement.Student.ClassName)
	payload, err := s.statements.Render(dataset, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	filename := fmt.Sprintf("statement_%s.pdf", statement.Student.ID)
	return payload, filename, nil
}
