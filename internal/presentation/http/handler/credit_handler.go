package handler

import (
	"strconv"

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

// CreditHandler handles store credit HTTP requests
type CreditHandler struct {
	creditService *service.CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService *service.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// Issue handles manual credit issuance
func (h *CreditHandler) Issue(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.IssueCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	source := enum.CreditSourceManual
	if req.Source != "" {
		parsed, err := enum.ParseCreditSource(req.Source)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		source = parsed
	}

	result, err := h.creditService.IssueCredit(c.Request.Context(), &service.IssueCreditInput{
		UserID:           *userID,
		CustomerID:       req.CustomerID,
		AmountCents:      utils.ToCents(req.Amount),
		Source:           source,
		ExpirationMonths: req.ExpirationMonths,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Store credit issued successfully", result)
}

// List handles listing store credits
func (h *CreditHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.CreditFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := enum.ParseCreditStatus(statusStr)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		params.Status = &status
	}

	if sourceStr := c.Query("source"); sourceStr != "" {
		source, err := enum.ParseCreditSource(sourceStr)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		params.Source = &source
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}

	items, total, err := h.creditService.ListCredits(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(items,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Store credits retrieved successfully", result)
}

// Get handles retrieving a store credit by ID
func (h *CreditHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store credit ID")
		return
	}

	result, err := h.creditService.GetCredit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store credit retrieved successfully", result)
}

// GetByMemoNumber handles retrieving a store credit by memo number
func (h *CreditHandler) GetByMemoNumber(c *gin.Context) {
	result, err := h.creditService.GetCreditByMemoNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store credit retrieved successfully", result)
}

// Apply handles applying credit to a payment
func (h *CreditHandler) Apply(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store credit ID")
		return
	}

	var req request.ApplyCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.creditService.ApplyCredit(c.Request.Context(), id, &service.ApplyCreditInput{
		OperatorID:  *userID,
		AmountCents: utils.ToCents(req.Amount),
		RegisterRef: req.RegisterRef,
		PaymentRef:  req.PaymentRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store credit applied successfully", result)
}

// Void handles voiding a store credit
func (h *CreditHandler) Void(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store credit ID")
		return
	}

	var req request.VoidCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.creditService.VoidCredit(c.Request.Context(), id, *userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Store credit voided successfully", result)
}
