package services

import (
	"io"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"
)

var enrollmentExportHeaders = []string{
	"Enrollment ID", "User ID", "Center", "City", "Plan", "Status", "Order ID", "Enrolled At",
}

// WriteEnrollmentsXLSX writes enrollments as a single-sheet workbook
func WriteEnrollmentsXLSX(w io.Writer, enrollments []models.Enrollment) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Enrollments")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	header := sheet.AddRow()
	for _, h := range enrollmentExportHeaders {
		cell := header.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	for _, e := range enrollments {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(e.ID))
		row.AddCell().SetString(e.UserID)
		if e.Center != nil {
			row.AddCell().SetString(e.Center.Name)
			row.AddCell().SetString(e.Center.City)
		} else {
			row.AddCell().SetString(e.CenterID)
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(e.EmiPlan)
		row.AddCell().SetString(string(e.Status))
		row.AddCell().SetString(e.PaymentOrderID)
		row.AddCell().SetString(e.EnrolledAt.Format("2006-01-02 15:04"))
	}

	return errors.Wrap(file.Write(w), "write workbook")
}
