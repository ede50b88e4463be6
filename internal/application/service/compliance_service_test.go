package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PrefersSaleItemSnapshot(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 2, 1200)

	snapshot := env.compliance.Extract(env.ctx, sale, product.ID, nil)

	assert.Equal(t, "SOLD-BATCH-7", snapshot.BatchID)
	assert.Equal(t, "1A400030000000000000123", snapshot.StateTrackingID)
	assert.Equal(t, "Blue Dream", snapshot.StrainName)
	assert.Equal(t, 4.5, snapshot.UnitWeightGrams)
}

func TestExtract_PinnedSaleItem(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 2, 1200)
	require.Len(t, sale.Items, 1)

	// Pinning a sale item that does not exist on the sale falls back to
	// the live product record.
	bogus := uuid.New()
	snapshot := env.compliance.Extract(env.ctx, sale, product.ID, &bogus)
	assert.Equal(t, "LIVE-BATCH", snapshot.BatchID)

	// Pinning the real one matches it
	snapshot = env.compliance.Extract(env.ctx, sale, product.ID, &sale.Items[0].ID)
	assert.Equal(t, "SOLD-BATCH-7", snapshot.BatchID)
}

func TestExtract_ProductFallbackNormalized(t *testing.T) {
	env := newTestEnv(t)
	product := &entity.Product{
		TenantID: env.tenant.ID,
		Name:     "Mystery Jar",
		SKU:      "SKU-MYSTERY",
		Price:    2000,
		// No batch, producer or lab status on record
	}
	require.NoError(t, env.db.Create(product).Error)

	snapshot := env.compliance.Extract(env.ctx, nil, product.ID, nil)

	assert.Equal(t, entity.ComplianceUnknown, snapshot.BatchID)
	assert.Equal(t, entity.ComplianceUnknown, snapshot.Category)
	assert.Equal(t, entity.ComplianceUnknown, snapshot.Producer)
	assert.Equal(t, entity.ComplianceUnknown, snapshot.LabTestStatus)
}

func TestExtract_MissingProductGetsPlaceholder(t *testing.T) {
	env := newTestEnv(t)

	snapshot := env.compliance.Extract(env.ctx, nil, uuid.New(), nil)

	assert.Equal(t, entity.ComplianceUnknown, snapshot.BatchID)
	assert.Equal(t, entity.ComplianceUnknown, snapshot.Producer)
	assert.Empty(t, snapshot.StateTrackingID)
}
