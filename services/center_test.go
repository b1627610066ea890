package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterService(t *testing.T) {
	db := utils.TestSetup(t)
	svc := NewCenterService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCenterRequest{Name: "Zero", City: "Pune", Fee: decimal.Zero})
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))

	created, err := svc.Create(ctx, CreateCenterRequest{Name: " Beta Academy ", City: "Pune", Email: "Beta@Example.com", Fee: decimal.RequireFromString("15000.499")})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Beta Academy", created.Name)
	assert.Equal(t, "15000.5", created.Fee.String())

	_, err = svc.Create(ctx, CreateCenterRequest{Name: "Alpha", City: "Delhi", Fee: decimal.NewFromInt(9000)})
	require.NoError(t, err)

	page := &utils.Pagination{Page: 1, Limit: 10}
	pune, err := svc.List(ctx, "pune", page)
	require.NoError(t, err)
	require.Len(t, pune, 1)
	assert.EqualValues(t, 1, page.Total)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCenterNotFound)
}
