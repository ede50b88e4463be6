package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/infrastructure/cache"
	infraRepo "github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/pkg/metrc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database. A single
// connection keeps the shared-cache database alive and serializes
// access the way a single Postgres row lock would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Tenant{},
		&entity.Customer{},
		&entity.Product{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.ReturnRequest{},
		&entity.ReturnItem{},
		&entity.StoreCredit{},
		&entity.StoreCreditUsage{},
		&entity.SequenceCounter{},
		&entity.IdempotencyKey{},
	))

	return db
}

// stubReporter records destruction report calls and fails on demand
type stubReporter struct {
	mu    sync.Mutex
	calls [][]metrc.DestructionRecord
	err   error
}

func (r *stubReporter) Report(_ context.Context, records []metrc.DestructionRecord) (*metrc.ReportResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, records)
	if r.err != nil {
		return nil, r.err
	}
	return &metrc.ReportResult{AdjustmentID: "ADJ-1", Accepted: len(records)}, nil
}

func (r *stubReporter) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type testEnv struct {
	db       *gorm.DB
	tenant   *entity.Tenant
	ctx      context.Context
	operator uuid.UUID
	reporter *stubReporter

	returns    *ReturnService
	credits    *CreditService
	compliance *ComplianceService
	customers  *CustomerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)

	tenant := &entity.Tenant{
		Name:          "Green Bush Dispensary",
		Slug:          "greenbush",
		LicenseNumber: "C10-0000042-LIC",
		Timezone:      "America/Denver",
	}
	require.NoError(t, db.Create(tenant).Error)

	ctx := infraRepo.WithTenant(context.Background(), tenant.ID)
	log := zap.NewNop()

	returnRepo := infraRepo.NewReturnRepository(db)
	saleRepo := infraRepo.NewSaleRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)
	creditRepo := infraRepo.NewStoreCreditRepository(db)
	sequenceRepo := infraRepo.NewSequenceRepository(db)

	reporter := &stubReporter{}
	compliance := NewComplianceService(productRepo, log)
	credits := NewCreditService(creditRepo, customerRepo, sequenceRepo, cache.NoopBalanceCache{}, log)
	returns := NewReturnService(
		returnRepo, saleRepo, productRepo, customerRepo, sequenceRepo,
		compliance, credits, reporter, 2*time.Second, log,
	)

	return &testEnv{
		db:         db,
		tenant:     tenant,
		ctx:        ctx,
		operator:   uuid.New(),
		reporter:   reporter,
		returns:    returns,
		credits:    credits,
		compliance: compliance,
		customers:  NewCustomerService(customerRepo),
	}
}

func (e *testEnv) createCustomer(t *testing.T, name string) *entity.Customer {
	t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	customer := &entity.Customer{
		TenantID: e.tenant.ID,
		Name:     name,
		Email:    &email,
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *testEnv) createProduct(t *testing.T, name string, priceCents int64, trackingID string) *entity.Product {
	t.Helper()
	product := &entity.Product{
		TenantID:        e.tenant.ID,
		Name:            name,
		SKU:             "SKU-" + strings.ReplaceAll(name, " ", "-"),
		Price:           priceCents,
		BatchID:         "LIVE-BATCH",
		StateTrackingID: trackingID,
		Category:        "edible",
		StrainName:      "Blue Dream",
		THCMgPerUnit:    10,
		CBDMgPerUnit:    2,
		UnitOfMeasure:   "each",
		UnitWeightGrams: 4.5,
		Producer:        "High Plains Processing",
		LabTestStatus:   "passed",
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

// createSale records a sale of one product with a frozen compliance
// snapshot that intentionally differs from the live product record.
func (e *testEnv) createSale(t *testing.T, customer *entity.Customer, product *entity.Product, qty int, unitPriceCents int64) *entity.Sale {
	t.Helper()
	sale := &entity.Sale{
		TenantID:   e.tenant.ID,
		InvoiceNo:  "INV-" + uuid.New().String()[:8],
		CustomerID: &customer.ID,
		SaleDate:   time.Now().AddDate(0, 0, -3),
		Total:      unitPriceCents * int64(qty),
		Items: []entity.SaleItem{
			{
				ProductID: product.ID,
				Quantity:  qty,
				UnitPrice: unitPriceCents,
				Compliance: entity.ComplianceSnapshot{
					BatchID:         "SOLD-BATCH-7",
					StateTrackingID: product.StateTrackingID,
					Category:        product.Category,
					StrainName:      product.StrainName,
					THCMgPerUnit:    product.THCMgPerUnit,
					CBDMgPerUnit:    product.CBDMgPerUnit,
					UnitOfMeasure:   product.UnitOfMeasure,
					UnitWeightGrams: product.UnitWeightGrams,
					Producer:        product.Producer,
					LabTestStatus:   "passed",
				},
			},
		},
	}
	require.NoError(t, e.db.Create(sale).Error)
	return sale
}
