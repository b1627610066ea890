package services

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestInvoice(t *testing.T) {
	f := newConfirmFixture(t)
	invoices := NewInvoiceService(f.db)
	ctx := context.Background()

	_, err := invoices.Load(ctx, "order_1", f.profile.ID, false)
	assert.Equal(t, http.StatusConflict, utils.StatusOf(err), "pending payments have no invoice")

	_, err = f.svc.Confirm(ctx, f.request("pay_1"))
	require.NoError(t, err)

	_, err = invoices.Load(ctx, "order_1", "someone-else", false)
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))

	inv, err := invoices.Load(ctx, "order_1", "someone-else", true)
	require.NoError(t, err)
	require.NotNil(t, inv.Enrollment)
	assert.Equal(t, f.center.Name, inv.Center.Name)

	var buf bytes.Buffer
	require.NoError(t, invoices.Render(&buf, inv))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteEnrollmentsXLSX(t *testing.T) {
	enrolled := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	rows := []models.Enrollment{
		{ID: 7, UserID: "u1", CenterID: "c1", Center: &models.Center{Name: "Alpha", City: "Kochi"}, EmiPlan: PlanFull, Status: models.EnrollmentActive, PaymentOrderID: "o1", EnrolledAt: enrolled},
		{ID: 8, UserID: "u2", CenterID: "c2", EmiPlan: PlanEMI6, Status: models.EnrollmentCancelled, PaymentOrderID: "o2", EnrolledAt: enrolled},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnrollmentsXLSX(&buf, rows))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Enrollments"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Enrollment ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Alpha", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "c2", sheet.Rows[2].Cells[2].String())
	assert.Equal(t, "2025-06-01 10:30", sheet.Rows[1].Cells[7].String())
}
