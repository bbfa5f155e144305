package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantCRUD(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewTenantService(conn, nullLogger())
	ctx := context.Background()

	tn := models.Tenant{FullName: "María Choque", NationalID: "7788990", Phone: "76543210"}
	require.NoError(t, svc.Create(ctx, &tn))
	assert.Equal(t, models.TenantActive, tn.Status)

	dup := models.Tenant{FullName: "Otra", NationalID: "7788990", Phone: "1"}
	assert.True(t, apperr.IsConflict(svc.Create(ctx, &dup)))

	upd, err := svc.Update(ctx, tn.ID, &models.Tenant{FullName: "María Choque Apaza", NationalID: "7788990", Phone: "76543210", Status: models.TenantInactive})
	require.NoError(t, err)
	assert.Equal(t, "María Choque Apaza", upd.FullName)

	inactive, err := svc.List(ctx, models.TenantInactive)
	require.NoError(t, err)
	assert.Len(t, inactive, 1)

	require.NoError(t, svc.Delete(ctx, tn.ID))
	_, err = svc.Get(ctx, tn.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTenantDelete_BlockedByActiveContract(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000")
	svc := NewTenantService(conn, nullLogger())
	assert.True(t, apperr.IsConflict(svc.Delete(context.Background(), f.Tenant.ID)))
}
