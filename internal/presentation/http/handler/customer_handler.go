package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/application/service"
	"github.com/greenbush/returns-api/internal/presentation/http/dto/request"
	"github.com/greenbush/returns-api/internal/presentation/http/dto/response"
	"github.com/greenbush/returns-api/pkg/pagination"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	creditService   *service.CreditService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService, creditService *service.CreditService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		creditService:   creditService,
	}
}

// Create handles registering a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", result)
}

// List handles listing customers
func (h *CustomerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	items, total, err := h.customerService.ListCustomers(c.Request.Context(), c.Query("search"), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(items,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Customers retrieved successfully", result)
}

// Get handles retrieving a customer by ID
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	result, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", result)
}

// CreditBalance handles retrieving a customer's applicable credit balance
func (h *CustomerHandler) CreditBalance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	balance, err := h.creditService.CustomerBalance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	credits, err := h.creditService.LiveCredits(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit balance retrieved successfully", gin.H{
		"customer_id":   balance.CustomerID,
		"total_balance": float64(balance.TotalBalance) / 100,
		"credit_count":  balance.CreditCount,
		"computed_at":   balance.ComputedAt,
		"credits":       credits,
	})
}
