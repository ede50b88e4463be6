package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/internal/domain/repository"
	"github.com/greenbush/returns-api/internal/domain/workflow"
	infraRepo "github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/pkg/apperror"
	"github.com/greenbush/returns-api/pkg/metrc"
	"go.uber.org/zap"
)

// ReturnService handles the return request workflow
type ReturnService struct {
	returnRepo   repository.ReturnRepository
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	sequenceRepo repository.SequenceRepository
	compliance   *ComplianceService
	credits      *CreditService
	reporter     metrc.Reporter
	metrcTimeout time.Duration
	logger       *zap.Logger
}

// NewReturnService creates a new return service
func NewReturnService(
	returnRepo repository.ReturnRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	sequenceRepo repository.SequenceRepository,
	compliance *ComplianceService,
	credits *CreditService,
	reporter metrc.Reporter,
	metrcTimeout time.Duration,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		returnRepo:   returnRepo,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sequenceRepo: sequenceRepo,
		compliance:   compliance,
		credits:      credits,
		reporter:     reporter,
		metrcTimeout: metrcTimeout,
		logger:       logger,
	}
}

// ReturnItemInput represents one line of a new return request
type ReturnItemInput struct {
	ProductID  uuid.UUID
	SaleItemID *uuid.UUID
	Quantity   int
	Condition  enum.ItemCondition
}

// CreateReturnInput represents the create return input
type CreateReturnInput struct {
	UserID         uuid.UUID
	Type           enum.ReturnType
	SaleID         *uuid.UUID
	SaleInvoiceNo  string
	CustomerID     *uuid.UUID
	Reason         string
	DetailedReason string
	Items          []ReturnItemInput
}

// CreateReturn creates a new return request in pending approval.
// Compliance snapshots are copied onto each line once, here, and never
// recomputed afterward.
func (s *ReturnService) CreateReturn(ctx context.Context, input *CreateReturnInput) (*entity.ReturnRequest, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	// Resolve the originating sale, by ID or invoice number
	var sale *entity.Sale
	var err error
	if input.SaleID != nil {
		sale, err = s.saleRepo.GetByID(ctx, *input.SaleID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, apperror.NewNotFoundError("Sale")
		}
	} else if input.SaleInvoiceNo != "" {
		sale, err = s.saleRepo.GetByInvoiceNo(ctx, input.SaleInvoiceNo)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, apperror.NewNotFoundError("Sale")
		}
	}

	// The customer defaults from the sale when not given explicitly
	customerID := input.CustomerID
	if customerID == nil && sale != nil {
		customerID = sale.CustomerID
	}
	if customerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	now := time.Now()
	returnNumber, err := nextDocumentNumber(ctx, s.sequenceRepo, tenantID, prefixReturn, now)
	if err != nil {
		return nil, err
	}

	request := &entity.ReturnRequest{
		TenantID:       tenantID,
		ReturnNumber:   returnNumber,
		Type:           input.Type,
		Status:         enum.ReturnStatusPendingApproval,
		CustomerID:     customerID,
		Reason:         input.Reason,
		DetailedReason: input.DetailedReason,
		CreatedBy:      input.UserID,
		UpdatedBy:      input.UserID,
	}
	if sale != nil {
		request.SaleID = &sale.ID
		request.SaleInvoiceNo = sale.InvoiceNo
	}

	for _, itemInput := range input.Items {
		product, ok := productMap[itemInput.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError("Product")
		}

		// Pricing prefers the sale line, falling back to the catalog
		unitPrice := product.Price
		if sale != nil {
			if saleItem := matchSaleItem(sale, itemInput.ProductID, itemInput.SaleItemID); saleItem != nil {
				unitPrice = saleItem.UnitPrice
			}
		}

		item := entity.ReturnItem{
			ProductID:  itemInput.ProductID,
			SaleItemID: itemInput.SaleItemID,
			Quantity:   itemInput.Quantity,
			UnitPrice:  unitPrice,
			LineValue:  unitPrice * int64(itemInput.Quantity),
			Condition:  itemInput.Condition,
			Compliance: s.compliance.Extract(ctx, sale, itemInput.ProductID, itemInput.SaleItemID),
		}
		request.Items = append(request.Items, item)
	}
	request.RecomputeTotal()

	if err := s.returnRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("return request created",
		zap.String("return_number", request.ReturnNumber),
		zap.String("type", request.Type.String()),
		zap.Int("items", len(request.Items)))

	return request, nil
}

func validateCreateInput(input *CreateReturnInput) error {
	var fieldErrors []apperror.FieldError
	if input.Reason == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "reason", Message: "reason is required"})
	}
	if len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "item quantity must be greater than zero"})
			break
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// GetReturn retrieves a return request by ID
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*entity.ReturnRequest, error) {
	request, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NewNotFoundError("Return request")
	}
	return request, nil
}

// GetReturnByNumber retrieves a return request by its RMA number
func (s *ReturnService) GetReturnByNumber(ctx context.Context, number string) (*entity.ReturnRequest, error) {
	request, err := s.returnRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NewNotFoundError("Return request")
	}
	return request, nil
}

// ListReturns lists return requests with filters
func (s *ReturnService) ListReturns(ctx context.Context, params *repository.ReturnFilterParams) ([]entity.ReturnRequest, int64, error) {
	return s.returnRepo.List(ctx, params)
}

// transition applies a workflow event with a compare-and-swap on the
// stored status. A lost race reloads the row and reports the error the
// fresh state implies, or a plain conflict when the event would still
// be legal.
func (s *ReturnService) transition(ctx context.Context, id uuid.UUID, ev workflow.Event, userID uuid.UUID, updates map[string]interface{}) (*entity.ReturnRequest, error) {
	request, err := s.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Next(request.Status, ev)
	if err != nil {
		return nil, err
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_by"] = userID

	swapped, err := s.returnRepo.TransitionStatus(ctx, id, request.Status, next, updates)
	if err != nil {
		return nil, err
	}
	if !swapped {
		fresh, err := s.GetReturn(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, werr := workflow.Next(fresh.Status, ev); werr != nil {
			return nil, werr
		}
		return nil, apperror.NewInvalidTransitionError("return request was modified concurrently, retry")
	}

	return s.GetReturn(ctx, id)
}

// Approve moves a pending request to approved
func (s *ReturnService) Approve(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*entity.ReturnRequest, error) {
	now := time.Now()
	return s.transition(ctx, id, workflow.EventApprove, userID, map[string]interface{}{
		"approved_by": userID,
		"approved_at": now,
	})
}

// Reject moves a pending request to rejected. A reason is mandatory.
func (s *ReturnService) Reject(ctx context.Context, id uuid.UUID, userID uuid.UUID, reason string) (*entity.ReturnRequest, error) {
	if reason == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "reason", Message: "rejection reason is required"},
		})
	}
	now := time.Now()
	return s.transition(ctx, id, workflow.EventReject, userID, map[string]interface{}{
		"rejected_by":      userID,
		"rejected_at":      now,
		"rejection_reason": reason,
	})
}

// MarkReceived records physical receipt of the returned goods
func (s *ReturnService) MarkReceived(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*entity.ReturnRequest, error) {
	now := time.Now()
	return s.transition(ctx, id, workflow.EventMarkReceived, userID, map[string]interface{}{
		"received_by": userID,
		"received_at": now,
	})
}

// StartInspection moves a received request into inspection
func (s *ReturnService) StartInspection(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*entity.ReturnRequest, error) {
	return s.transition(ctx, id, workflow.EventStartInspection, userID, nil)
}

// CompleteInspection records the inspection outcome. Legal from both
// received and inspecting, since small shops skip the explicit start.
func (s *ReturnService) CompleteInspection(ctx context.Context, id uuid.UUID, userID uuid.UUID, result enum.InspectionResult, notes string) (*entity.ReturnRequest, error) {
	now := time.Now()
	return s.transition(ctx, id, workflow.EventCompleteInspection, userID, map[string]interface{}{
		"inspected_by":      userID,
		"inspected_at":      now,
		"inspection_result": result,
		"inspection_notes":  notes,
	})
}

// ResolveInput represents the resolve input. A zero AmountCents means
// the full assessed value of the return.
type ResolveInput struct {
	Type                   enum.ResolutionType
	AmountCents            int64
	ReplacementOrderRef    string
	CreditExpirationMonths int
}

// Resolve settles an inspected request. For store credit resolutions
// the credit is issued after the status swap; if issuance fails the
// status is reverted so the request can be resolved again.
func (s *ReturnService) Resolve(ctx context.Context, id uuid.UUID, userID uuid.UUID, input *ResolveInput) (*entity.ReturnRequest, error) {
	request, err := s.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := workflow.Next(request.Status, workflow.EventResolve); err != nil {
		return nil, err
	}

	amount := input.AmountCents
	if amount == 0 {
		amount = request.TotalValue
	}
	if amount > request.TotalValue {
		amount = request.TotalValue
	}
	if amount < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "amount", Message: "amount cannot be negative"},
		})
	}

	switch input.Type {
	case enum.ResolutionTypeReplacement:
		if input.ReplacementOrderRef == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "replacement_order_ref", Message: "replacement order reference is required"},
			})
		}
	case enum.ResolutionTypeStoreCredit:
		if request.CustomerID == nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "resolution_type", Message: "store credit requires a customer on the return"},
			})
		}
		if amount == 0 {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "amount", Message: "store credit amount must be greater than zero"},
			})
		}
	}

	now := time.Now()
	resolutionType := input.Type
	swapped, err := s.returnRepo.TransitionStatus(ctx, id, request.Status, enum.ReturnStatusResolved, map[string]interface{}{
		"resolution_type":       resolutionType,
		"resolution_amount":     amount,
		"replacement_order_ref": input.ReplacementOrderRef,
		"resolved_by":           userID,
		"resolved_at":           now,
		"updated_by":            userID,
	})
	if err != nil {
		return nil, err
	}
	if !swapped {
		fresh, err := s.GetReturn(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, werr := workflow.Next(fresh.Status, workflow.EventResolve); werr != nil {
			return nil, werr
		}
		return nil, apperror.NewInvalidTransitionError("return request was modified concurrently, retry")
	}

	if resolutionType == enum.ResolutionTypeStoreCredit {
		credit, err := s.credits.IssueCredit(ctx, &IssueCreditInput{
			UserID:           userID,
			CustomerID:       *request.CustomerID,
			AmountCents:      amount,
			Source:           enum.CreditSourceRMARefund,
			ReturnRequestID:  &request.ID,
			ExpirationMonths: input.CreditExpirationMonths,
		})
		if err != nil {
			// Compensating revert: undo the swap so the request stays
			// resolvable instead of being resolved with no credit behind it.
			if _, rerr := s.returnRepo.TransitionStatus(ctx, id, enum.ReturnStatusResolved, request.Status, map[string]interface{}{
				"resolution_type":   nil,
				"resolution_amount": 0,
				"resolved_by":       nil,
				"resolved_at":       nil,
			}); rerr != nil {
				s.logger.Error("failed to revert resolution after credit issuance failure",
					zap.String("return_number", request.ReturnNumber),
					zap.Error(rerr))
			}
			return nil, err
		}

		if err := s.returnRepo.UpdateFields(ctx, id, map[string]interface{}{
			"credit_memo_number": credit.MemoNumber,
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("return request resolved",
		zap.String("return_number", request.ReturnNumber),
		zap.String("resolution_type", resolutionType.String()),
		zap.Int64("amount_cents", amount))

	return s.GetReturn(ctx, id)
}

// Close moves a resolved request to closed
func (s *ReturnService) Close(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*entity.ReturnRequest, error) {
	now := time.Now()
	return s.transition(ctx, id, workflow.EventClose, userID, map[string]interface{}{
		"closed_by": userID,
		"closed_at": now,
	})
}

// Cancel abandons a request before resolution. Past pending approval
// this is restricted to elevated operators.
func (s *ReturnService) Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID, elevated bool, reason string) (*entity.ReturnRequest, error) {
	request, err := s.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.CancelRequiresElevation(request.Status) && !elevated {
		return nil, apperror.ErrForbidden
	}

	now := time.Now()
	return s.transition(ctx, id, workflow.EventCancel, userID, map[string]interface{}{
		"cancelled_by":  userID,
		"cancelled_at":  now,
		"cancel_reason": reason,
	})
}

// UpdateNotes replaces the internal notes. Notes stay writable in every
// status, terminal ones included.
func (s *ReturnService) UpdateNotes(ctx context.Context, id uuid.UUID, userID uuid.UUID, notes string) (*entity.ReturnRequest, error) {
	if _, err := s.GetReturn(ctx, id); err != nil {
		return nil, err
	}

	if err := s.returnRepo.UpdateFields(ctx, id, map[string]interface{}{
		"internal_notes": notes,
		"updated_by":     userID,
	}); err != nil {
		return nil, err
	}

	return s.GetReturn(ctx, id)
}

// DestroyInput represents the record destruction input
type DestroyInput struct {
	Method  string
	Witness string
	Notes   string
}

// Destroy records the physical destruction of the returned goods and
// reports it to the state track-and-trace system. The local record is
// persisted before the report is attempted; a report failure flags the
// request for manual follow-up instead of failing the operation.
func (s *ReturnService) Destroy(ctx context.Context, id uuid.UUID, userID uuid.UUID, input *DestroyInput) (*entity.ReturnRequest, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.Method == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "destruction_method", Message: "destruction method is required"},
		})
	}
	if input.Witness == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "disposal_witness", Message: "disposal witness is required"},
		})
	}

	request, err := s.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Status != enum.ReturnStatusResolved && request.Status != enum.ReturnStatusClosed {
		return nil, apperror.NewInvalidTransitionError(
			"cannot destroy goods for a return request in status " + request.Status.String())
	}
	if request.DestroyedAt != nil {
		return nil, apperror.NewAlreadyResolvedError("returned goods have already been destroyed")
	}

	// Aggregate destroyed quantities from the frozen snapshots
	var weightGrams, thcMg, cbdMg float64
	for i := range request.Items {
		item := &request.Items[i]
		qty := float64(item.Quantity)
		weightGrams += qty * item.Compliance.UnitWeightGrams
		thcMg += qty * item.Compliance.THCMgPerUnit
		cbdMg += qty * item.Compliance.CBDMgPerUnit
	}

	now := time.Now()
	manifestNumber, err := nextDocumentNumber(ctx, s.sequenceRepo, tenantID, prefixManifest, now)
	if err != nil {
		return nil, err
	}

	// Persist the local destruction record first; regulator reporting
	// must never be able to lose it. The repository guards on
	// destroyed_at IS NULL, so a concurrent destruction that landed
	// between our read and this write matches zero rows here.
	swapped, err := s.returnRepo.MarkDestroyed(ctx, id, request.Status, map[string]interface{}{
		"destruction_method":     input.Method,
		"disposal_witness":       input.Witness,
		"disposal_notes":         input.Notes,
		"destroyed_weight_grams": weightGrams,
		"destroyed_thc_mg":       thcMg,
		"destroyed_cbd_mg":       cbdMg,
		"manifest_number":        manifestNumber,
		"destroyed_by":           userID,
		"destroyed_at":           now,
		"updated_by":             userID,
	})
	if err != nil {
		return nil, err
	}
	if !swapped {
		fresh, err := s.GetReturn(ctx, id)
		if err != nil {
			return nil, err
		}
		if fresh.DestroyedAt != nil {
			return nil, apperror.NewAlreadyResolvedError("returned goods have already been destroyed")
		}
		return nil, apperror.NewInvalidTransitionError("return request was modified concurrently, retry")
	}

	records := make([]metrc.DestructionRecord, 0, len(request.Items))
	for i := range request.Items {
		item := &request.Items[i]
		trackingID := item.Compliance.StateTrackingID
		if trackingID == "" || trackingID == entity.ComplianceUnknown {
			continue
		}
		records = append(records, metrc.DestructionRecord{
			TrackingID:      trackingID,
			Quantity:        item.Quantity,
			UnitOfMeasure:   item.Compliance.UnitOfMeasure,
			WeightGrams:     float64(item.Quantity) * item.Compliance.UnitWeightGrams,
			DestructionDate: now,
			Reason:          request.Reason,
			Method:          input.Method,
		})
	}

	if len(records) > 0 {
		reportCtx, cancel := context.WithTimeout(ctx, s.metrcTimeout)
		defer cancel()

		outcome := map[string]interface{}{"metrc_reported": true, "metrc_error": ""}
		if _, err := s.reporter.Report(reportCtx, records); err != nil {
			s.logger.Warn("destruction report failed, flagging for manual reporting",
				zap.String("return_number", request.ReturnNumber),
				zap.String("manifest_number", manifestNumber),
				zap.Error(err))
			outcome = map[string]interface{}{
				"metrc_reported":            false,
				"requires_manual_reporting": true,
				"metrc_error":               err.Error(),
			}
		}
		if err := s.returnRepo.UpdateFields(ctx, id, outcome); err != nil {
			return nil, err
		}
	}

	s.logger.Info("returned goods destroyed",
		zap.String("return_number", request.ReturnNumber),
		zap.String("manifest_number", manifestNumber),
		zap.Float64("weight_grams", weightGrams))

	return s.GetReturn(ctx, id)
}
