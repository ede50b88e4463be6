package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	infraRepo "github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createReturn(t *testing.T, customer *entity.Customer, product *entity.Product, sale *entity.Sale, qty int) *entity.ReturnRequest {
	t.Helper()

	input := &CreateReturnInput{
		UserID: e.operator,
		Type:   enum.ReturnTypeCustomerReturn,
		Reason: entity.ReturnReasonDefective,
		Items: []ReturnItemInput{
			{ProductID: product.ID, Quantity: qty, Condition: enum.ItemConditionDefective},
		},
	}
	if sale != nil {
		input.SaleID = &sale.ID
	} else if customer != nil {
		input.CustomerID = &customer.ID
	}

	request, err := e.returns.CreateReturn(e.ctx, input)
	require.NoError(t, err)
	return request
}

func (e *testEnv) advanceToInspected(t *testing.T, id uuid.UUID) {
	t.Helper()
	_, err := e.returns.Approve(e.ctx, id, e.operator)
	require.NoError(t, err)
	_, err = e.returns.MarkReceived(e.ctx, id, e.operator)
	require.NoError(t, err)
	_, err = e.returns.CompleteInspection(e.ctx, id, e.operator, enum.InspectionResultConfirmedDefective, "crumbled in package")
	require.NoError(t, err)
}

func TestCreateReturn_SnapshotCopiedFromSale(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 3, 1200)

	request := env.createReturn(t, nil, product, sale, 2)

	assert.Equal(t, enum.ReturnStatusPendingApproval, request.Status)
	assert.Regexp(t, `^RMA-\d{6}-0001$`, request.ReturnNumber)
	require.NotNil(t, request.CustomerID)
	assert.Equal(t, customer.ID, *request.CustomerID)
	assert.Equal(t, sale.InvoiceNo, request.SaleInvoiceNo)

	require.Len(t, request.Items, 1)
	item := request.Items[0]
	// Snapshot comes from the sale line frozen at sale time, not the
	// live product record.
	assert.Equal(t, "SOLD-BATCH-7", item.Compliance.BatchID)
	assert.Equal(t, "1A400030000000000000123", item.Compliance.StateTrackingID)
	// Pricing also follows the sale line
	assert.Equal(t, int64(1200), item.UnitPrice)
	assert.Equal(t, int64(2400), item.LineValue)
	assert.Equal(t, int64(2400), request.TotalValue)
}

func TestCreateReturn_FallbackToProductSnapshot(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Ray Ortega")
	product := env.createProduct(t, "Tincture 30ml", 4500, "1A400030000000000000999")

	request := env.createReturn(t, customer, product, nil, 1)

	require.Len(t, request.Items, 1)
	item := request.Items[0]
	assert.Equal(t, "LIVE-BATCH", item.Compliance.BatchID)
	assert.Equal(t, int64(4500), item.UnitPrice)
	assert.Equal(t, int64(4500), request.TotalValue)
}

func TestCreateReturn_TotalSumsLines(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Ray Ortega")
	gummy := env.createProduct(t, "Gummy 10mg", 1000, "")
	tincture := env.createProduct(t, "Tincture 30ml", 1500, "")

	request, err := env.returns.CreateReturn(env.ctx, &CreateReturnInput{
		UserID:     env.operator,
		Type:       enum.ReturnTypeCustomerReturn,
		CustomerID: &customer.ID,
		Reason:     entity.ReturnReasonDefective,
		Items: []ReturnItemInput{
			{ProductID: gummy.ID, Quantity: 1, Condition: enum.ItemConditionDefective},
			{ProductID: tincture.ID, Quantity: 1, Condition: enum.ItemConditionUnopened},
		},
	})
	require.NoError(t, err)

	require.Len(t, request.Items, 2)
	assert.Equal(t, int64(2500), request.TotalValue)
}

func TestCreateReturn_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.returns.CreateReturn(env.ctx, &CreateReturnInput{
		UserID: env.operator,
		Type:   enum.ReturnTypeCustomerReturn,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = env.returns.CreateReturn(env.ctx, &CreateReturnInput{
		UserID: env.operator,
		Type:   enum.ReturnTypeCustomerReturn,
		Reason: entity.ReturnReasonDefective,
		Items: []ReturnItemInput{
			{ProductID: uuid.New(), Quantity: 1, Condition: enum.ItemConditionDefective},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCreateReturn_SequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")

	first := env.createReturn(t, customer, product, nil, 1)
	second := env.createReturn(t, customer, product, nil, 1)

	assert.Regexp(t, `-0001$`, first.ReturnNumber)
	assert.Regexp(t, `-0002$`, second.ReturnNumber)
}

func TestWorkflow_HappyPathToStoreCredit(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 3, 1200)
	request := env.createReturn(t, nil, product, sale, 2)

	env.advanceToInspected(t, request.ID)

	resolved, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
		Type: enum.ResolutionTypeStoreCredit,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.ReturnStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolutionType)
	assert.Equal(t, enum.ResolutionTypeStoreCredit, *resolved.ResolutionType)
	// Zero amount means the full assessed value
	assert.Equal(t, int64(2400), resolved.ResolutionAmount)
	assert.Regexp(t, `^CM-\d{6}-0001$`, resolved.CreditMemoNumber)

	credit, err := env.credits.GetCreditByMemoNumber(env.ctx, resolved.CreditMemoNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), credit.OriginalAmount)
	assert.Equal(t, int64(2400), credit.RemainingBalance)
	assert.Equal(t, enum.CreditStatusActive, credit.Status)
	assert.Equal(t, enum.CreditSourceRMARefund, credit.Source)
	require.NotNil(t, credit.ReturnRequestID)
	assert.Equal(t, request.ID, *credit.ReturnRequestID)
	assert.Equal(t, customer.Name, credit.CustomerName)

	closed, err := env.returns.Close(env.ctx, request.ID, env.operator)
	require.NoError(t, err)
	assert.Equal(t, enum.ReturnStatusClosed, closed.Status)
}

func TestResolve_AmountCappedAtTotal(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Lee Park")
	product := env.createProduct(t, "Vape Cart", 5000, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	resolved, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
		Type:        enum.ResolutionTypeRefund,
		AmountCents: 99999,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), resolved.ResolutionAmount)
	// Refund resolutions issue no credit
	assert.Empty(t, resolved.CreditMemoNumber)
}

func TestResolve_Idempotency(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Lee Park")
	product := env.createProduct(t, "Vape Cart", 5000, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
		Type: enum.ResolutionTypeStoreCredit,
	})
	require.NoError(t, err)

	_, err = env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
		Type: enum.ResolutionTypeStoreCredit,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyResolved))

	var count int64
	require.NoError(t, env.db.Model(&entity.StoreCredit{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "a repeated resolve must not issue a second credit")
}

func TestResolve_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Lee Park")
	product := env.createProduct(t, "Vape Cart", 5000, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
				Type: enum.ResolutionTypeStoreCredit,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case apperror.IsKind(err, apperror.KindAlreadyResolved) || apperror.IsKind(err, apperror.KindInvalidTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one resolve must win")
	assert.Equal(t, 1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&entity.StoreCredit{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolve_StoreCreditRequiresCustomer(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Preroll", 900, "")

	request, err := env.returns.CreateReturn(env.ctx, &CreateReturnInput{
		UserID: env.operator,
		Type:   enum.ReturnTypeInternalDamage,
		Reason: entity.ReturnReasonQualityIssue,
		Items: []ReturnItemInput{
			{ProductID: product.ID, Quantity: 1, Condition: enum.ItemConditionDamaged},
		},
	})
	require.NoError(t, err)
	env.advanceToInspected(t, request.ID)

	_, err = env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{
		Type: enum.ResolutionTypeStoreCredit,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestTransition_IllegalEvent(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)

	_, err := env.returns.Approve(env.ctx, request.ID, env.operator)
	require.NoError(t, err)

	_, err = env.returns.Approve(env.ctx, request.ID, env.operator)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	_, err = env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestReject_RequiresReason(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)

	_, err := env.returns.Reject(env.ctx, request.ID, env.operator, "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	rejected, err := env.returns.Reject(env.ctx, request.ID, env.operator, "no proof of purchase")
	require.NoError(t, err)
	assert.Equal(t, enum.ReturnStatusRejected, rejected.Status)
	assert.Equal(t, "no proof of purchase", rejected.RejectionReason)
}

func TestCancel_ElevationRules(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")

	// Anyone may cancel while still pending approval
	pending := env.createReturn(t, customer, product, nil, 1)
	cancelled, err := env.returns.Cancel(env.ctx, pending.ID, env.operator, false, "customer walked out")
	require.NoError(t, err)
	assert.Equal(t, enum.ReturnStatusCancelled, cancelled.Status)

	// Past pending approval a non-elevated operator is refused
	approved := env.createReturn(t, customer, product, nil, 1)
	_, err = env.returns.Approve(env.ctx, approved.ID, env.operator)
	require.NoError(t, err)

	_, err = env.returns.Cancel(env.ctx, approved.ID, env.operator, false, "")
	require.Error(t, err)
	assert.Equal(t, 403, apperror.GetAppError(err).Code)

	cancelled, err = env.returns.Cancel(env.ctx, approved.ID, env.operator, true, "entered in error")
	require.NoError(t, err)
	assert.Equal(t, enum.ReturnStatusCancelled, cancelled.Status)
	assert.Equal(t, "entered in error", cancelled.CancelReason)
}

func TestUpdateNotes_WritableAfterTerminal(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)
	_, err = env.returns.Close(env.ctx, request.ID, env.operator)
	require.NoError(t, err)

	updated, err := env.returns.UpdateNotes(env.ctx, request.ID, env.operator, "follow-up filed with vendor")
	require.NoError(t, err)
	assert.Equal(t, "follow-up filed with vendor", updated.InternalNotes)
	assert.Equal(t, enum.ReturnStatusClosed, updated.Status)
}

func TestDestroy_SuccessfulReport(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 3, 1200)
	request := env.createReturn(t, nil, product, sale, 2)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)

	destroyed, err := env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
		Method:  "rendered unusable and landfilled",
		Witness: "J. Alvarez",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^DM-\d{6}-0001$`, destroyed.ManifestNumber)
	require.NotNil(t, destroyed.DestroyedAt)
	assert.True(t, destroyed.MetrcReported)
	assert.False(t, destroyed.RequiresManualReporting)
	assert.InDelta(t, 9.0, destroyed.DestroyedWeightGrams, 0.001)   // 2 x 4.5g
	assert.InDelta(t, 20.0, destroyed.DestroyedTHCMg, 0.001)        // 2 x 10mg
	assert.InDelta(t, 4.0, destroyed.DestroyedCBDMg, 0.001)         // 2 x 2mg
	assert.Equal(t, 1, env.reporter.callCount())

	// Repeating the destruction is refused
	_, err = env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
		Method:  "rendered unusable and landfilled",
		Witness: "J. Alvarez",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyResolved))
}

func TestDestroy_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 3, 1200)
	request := env.createReturn(t, nil, product, sale, 2)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
				Method:  "rendered unusable and landfilled",
				Witness: "J. Alvarez",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindAlreadyResolved),
				"loser should see already destroyed, got %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one destruction must persist")
	assert.Equal(t, 1, env.reporter.callCount(), "the regulator must hear about the goods once")

	destroyed, err := env.returns.GetReturn(env.ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, destroyed.DestroyedAt)
	assert.Regexp(t, `^DM-\d{6}-\d{4}$`, destroyed.ManifestNumber)
}

func TestDestroy_ReportFailureFlagsManualFollowUp(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Dana Fields")
	product := env.createProduct(t, "Gummy 10mg", 1500, "1A400030000000000000123")
	sale := env.createSale(t, customer, product, 3, 1200)
	request := env.createReturn(t, nil, product, sale, 2)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)

	env.reporter.err = errors.New("metrc: 503 service unavailable")

	destroyed, err := env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
		Method:  "rendered unusable and landfilled",
		Witness: "J. Alvarez",
	})
	require.NoError(t, err, "a failed regulator report must not fail the local destruction")

	require.NotNil(t, destroyed.DestroyedAt)
	assert.NotEmpty(t, destroyed.ManifestNumber)
	assert.False(t, destroyed.MetrcReported)
	assert.True(t, destroyed.RequiresManualReporting)
	assert.Contains(t, destroyed.MetrcError, "503")
}

func TestDestroy_OnlyFromResolvedOrClosed(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "1A400030000000000000777")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
		Method:  "composted",
		Witness: "J. Alvarez",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestDestroy_SkipsLinesWithoutTrackingID(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	_, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)

	destroyed, err := env.returns.Destroy(env.ctx, request.ID, env.operator, &DestroyInput{
		Method:  "composted",
		Witness: "J. Alvarez",
	})
	require.NoError(t, err)

	// Nothing reportable: destruction is recorded locally only
	require.NotNil(t, destroyed.DestroyedAt)
	assert.False(t, destroyed.MetrcReported)
	assert.False(t, destroyed.RequiresManualReporting)
	assert.Equal(t, 0, env.reporter.callCount())
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)

	other := &entity.Tenant{Name: "Other Shop", Slug: "other"}
	require.NoError(t, env.db.Create(other).Error)
	otherCtx := infraRepo.WithTenant(context.Background(), other.ID)

	_, err := env.returns.GetReturn(otherCtx, request.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound),
		"cross-tenant access must look like a missing record")

	_, err = env.returns.Approve(otherCtx, request.ID, env.operator)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestGetReturnByNumber(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)

	found, err := env.returns.GetReturnByNumber(env.ctx, request.ReturnNumber)
	require.NoError(t, err)
	assert.Equal(t, request.ID, found.ID)

	_, err = env.returns.GetReturnByNumber(env.ctx, "RMA-000000-9999")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestResolveTime_AuditFieldsStamped(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t, "Sam Doyle")
	product := env.createProduct(t, "Preroll", 900, "")
	request := env.createReturn(t, customer, product, nil, 1)
	env.advanceToInspected(t, request.ID)

	before := time.Now().Add(-time.Second)
	resolved, err := env.returns.Resolve(env.ctx, request.ID, env.operator, &ResolveInput{Type: enum.ResolutionTypeRefund})
	require.NoError(t, err)

	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, env.operator, *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.After(before))
}
