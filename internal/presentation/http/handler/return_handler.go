package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/application/service"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/internal/domain/repository"
	"github.com/greenbush/returns-api/internal/presentation/http/dto/request"
	"github.com/greenbush/returns-api/internal/presentation/http/dto/response"
	"github.com/greenbush/returns-api/pkg/apperror"
	"github.com/greenbush/returns-api/pkg/pagination"
	"github.com/greenbush/returns-api/pkg/utils"
)

// ReturnHandler handles return request HTTP requests
type ReturnHandler struct {
	returnService *service.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnService *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// Create handles creating a return request
func (h *ReturnHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	returnType, err := enum.ParseReturnType(req.Type)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}

	input := &service.CreateReturnInput{
		UserID:         *userID,
		Type:           returnType,
		SaleID:         req.SaleID,
		SaleInvoiceNo:  req.SaleInvoiceNo,
		CustomerID:     req.CustomerID,
		Reason:         req.Reason,
		DetailedReason: req.DetailedReason,
	}

	for _, item := range req.Items {
		condition, err := enum.ParseItemCondition(item.Condition)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		input.Items = append(input.Items, service.ReturnItemInput{
			ProductID:  item.ProductID,
			SaleItemID: item.SaleItemID,
			Quantity:   item.Quantity,
			Condition:  condition,
		})
	}

	result, err := h.returnService.CreateReturn(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Return request created successfully", result)
}

// List handles listing return requests
func (h *ReturnHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.ReturnFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := enum.ParseReturnStatus(statusStr)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		params.Status = &status
	}

	if typeStr := c.Query("type"); typeStr != "" {
		returnType, err := enum.ParseReturnType(typeStr)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		params.Type = &returnType
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	items, total, err := h.returnService.ListReturns(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(items,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Return requests retrieved successfully", result)
}

// Get handles retrieving a return request by ID
func (h *ReturnHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	result, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return request retrieved successfully", result)
}

// GetByNumber handles retrieving a return request by RMA number
func (h *ReturnHandler) GetByNumber(c *gin.Context) {
	result, err := h.returnService.GetReturnByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return request retrieved successfully", result)
}

// Approve handles approving a pending return request
func (h *ReturnHandler) Approve(c *gin.Context) {
	h.simpleTransition(c, func(id, userID uuid.UUID) (interface{}, error) {
		return h.returnService.Approve(c.Request.Context(), id, userID)
	}, "Return request approved successfully")
}

// Reject handles rejecting a pending return request
func (h *ReturnHandler) Reject(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.RejectReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.returnService.Reject(c.Request.Context(), id, *userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return request rejected successfully", result)
}

// Receive handles marking returned goods as received
func (h *ReturnHandler) Receive(c *gin.Context) {
	h.simpleTransition(c, func(id, userID uuid.UUID) (interface{}, error) {
		return h.returnService.MarkReceived(c.Request.Context(), id, userID)
	}, "Return request marked received")
}

// StartInspection handles starting an inspection
func (h *ReturnHandler) StartInspection(c *gin.Context) {
	h.simpleTransition(c, func(id, userID uuid.UUID) (interface{}, error) {
		return h.returnService.StartInspection(c.Request.Context(), id, userID)
	}, "Inspection started")
}

// CompleteInspection handles recording an inspection outcome
func (h *ReturnHandler) CompleteInspection(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.CompleteInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := enum.ParseInspectionResult(req.Result)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}

	updated, err := h.returnService.CompleteInspection(c.Request.Context(), id, *userID, result, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inspection completed successfully", updated)
}

// Resolve handles settling an inspected return request
func (h *ReturnHandler) Resolve(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.ResolveReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resolutionType, err := enum.ParseResolutionType(req.ResolutionType)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}

	result, err := h.returnService.Resolve(c.Request.Context(), id, *userID, &service.ResolveInput{
		Type:                   resolutionType,
		AmountCents:            utils.ToCents(req.Amount),
		ReplacementOrderRef:    req.ReplacementOrderRef,
		CreditExpirationMonths: req.CreditExpirationMonths,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return request resolved successfully", result)
}

// Close handles closing a resolved return request
func (h *ReturnHandler) Close(c *gin.Context) {
	h.simpleTransition(c, func(id, userID uuid.UUID) (interface{}, error) {
		return h.returnService.Close(c.Request.Context(), id, userID)
	}, "Return request closed successfully")
}

// Cancel handles cancelling a return request
func (h *ReturnHandler) Cancel(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.CancelReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.returnService.Cancel(c.Request.Context(), id, *userID, IsElevated(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return request cancelled successfully", result)
}

// UpdateNotes handles replacing the internal notes
func (h *ReturnHandler) UpdateNotes(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.returnService.UpdateNotes(c.Request.Context(), id, *userID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notes updated successfully", result)
}

// Destroy handles recording destruction of returned goods
func (h *ReturnHandler) Destroy(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	var req request.DestroyReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.returnService.Destroy(c.Request.Context(), id, *userID, &service.DestroyInput{
		Method:  req.Method,
		Witness: req.Witness,
		Notes:   req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Destruction recorded successfully", result)
}

// simpleTransition factors the common shape of body-less transitions
func (h *ReturnHandler) simpleTransition(c *gin.Context, fn func(id, userID uuid.UUID) (interface{}, error), message string) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid return request ID")
		return
	}

	result, err := fn(id, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, result)
}
