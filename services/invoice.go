package services

import (
	"context"
	"io"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Invoice is everything printed on a payment receipt
type Invoice struct {
	Payment    models.Payment
	Center     models.Center
	Profile    models.Profile
	Enrollment *models.Enrollment
}

type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// Load collects the receipt for orderID. Only the payer or an admin may read it.
func (s *InvoiceService) Load(ctx context.Context, orderID, userID string, isAdmin bool) (*Invoice, error) {
	db := s.db.WithContext(ctx)

	var inv Invoice
	err := db.Where("order_id = ?", orderID).First(&inv.Payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load payment")
	}
	if !isAdmin && inv.Payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	if inv.Payment.Status != models.PaymentCompleted {
		return nil, utils.ConflictError("Invoice is available once the payment completes", nil)
	}

	if err := db.Where("id = ?", inv.Payment.CenterID).First(&inv.Center).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load center")
	}
	if err := db.Where("id = ?", inv.Payment.UserID).First(&inv.Profile).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load profile")
	}

	var enrollment models.Enrollment
	err = db.Where("payment_order_id = ?", orderID).First(&enrollment).Error
	switch {
	case err == nil:
		inv.Enrollment = &enrollment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.Wrap(err, "load enrollment")
	}
	return &inv, nil
}

// Render writes inv as an A4 PDF receipt
func (s *InvoiceService) Render(w io.Writer, inv *Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, utils.AppName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(100, 8, "Certification enrollment receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(90, 8, "Order ID: "+inv.Payment.OrderID)
	pdf.Cell(90, 8, "Payment ID: "+inv.Payment.PaymentID)
	pdf.Ln(8)
	paidOn := inv.Payment.UpdatedAt
	if inv.Payment.CompletedAt != nil {
		paidOn = *inv.Payment.CompletedAt
	}
	pdf.Cell(90, 8, "Paid on: "+paidOn.Format("2006-01-02 15:04"))
	pdf.Cell(90, 8, "Status: "+string(inv.Payment.Status))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	name := inv.Profile.FullName
	if name == "" {
		name = inv.Payment.UserID
	}
	pdf.Cell(100, 8, name)
	pdf.Ln(6)
	if inv.Profile.Email != "" {
		pdf.Cell(100, 8, inv.Profile.Email)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Center", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Plan", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Currency", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	centerName := inv.Center.Name
	if centerName == "" {
		centerName = inv.Payment.CenterID
	}
	pdf.CellFormat(80, 8, centerName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, inv.Payment.Plan, "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, inv.Payment.Currency, "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, inv.Payment.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if inv.Enrollment != nil {
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, "Enrolled on "+inv.Enrollment.EnrolledAt.Format("2006-01-02")+", status "+string(inv.Enrollment.Status))
		pdf.Ln(8)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for enrolling with "+utils.AppName+"!")

	return errors.Wrap(pdf.Output(w), "render invoice")
}
