package orderserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// IdempotencyKeyHeader lets clients retry order creation without duplicates.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders service and workflows.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI backed by the provided service. Creation
// runs through workflows when it is not nil.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Get /orders
// Lists every order, 204 when there are none
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListAll(c.Request.Context())
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainList(orders))
}

// Post /orders
// Creates an order, the store assigns its id
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	fields, ok := bindOrderFields(c)
	if !ok {
		return
	}
	input := orderports.CreateOrderInput{
		Fields:         fields,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	}
	created, err := api.createOrder(c.Request.Context(), input)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomain(created))
}

func (api *OrderAPI) createOrder(ctx context.Context, input orderports.CreateOrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.CreateOrder(ctx, input)
	}
	return api.service.Create(ctx, input.Fields)
}

// Get /orders/count
func (api *OrderAPI) CountOrders(c *gin.Context) {
	count, err := api.service.Count(c.Request.Context())
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

// Get /orders/:id
func (api *OrderAPI) GetOrderById(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomain(order))
}

// Put /orders/:id
// Replaces every field of an existing order except its id
func (api *OrderAPI) ReplaceOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fields, ok := bindOrderFields(c)
	if !ok {
		return
	}
	updated, err := api.service.Replace(c.Request.Context(), id, fields)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomain(updated))
}

// Delete /orders/:id
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), id); err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Put /orders/:id/status/:status
// Changes only the status of an order
func (api *OrderAPI) SetOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status := domain.Status(c.Param("status"))
	updated, err := api.service.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomain(updated))
}

// Get /orders/status/:status
func (api *OrderAPI) FindOrdersByStatus(c *gin.Context) {
	orders, err := api.service.FindByStatus(c.Request.Context(), domain.Status(c.Param("status")))
	respondOrderList(c, orders, err)
}

// Get /orders/creationDate/:date
// Finds orders created on a calendar date formatted YYYY-MM-DD
func (api *OrderAPI) FindOrdersByCreationDate(c *gin.Context) {
	var date types.Date
	err := runtime.BindStyledParameterWithOptions("simple", "date", c.Param("date"), &date, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	orders, err := api.service.FindByCreationDate(c.Request.Context(), date.Time)
	respondOrderList(c, orders, err)
}

// Get /orders/customer/:customerId
func (api *OrderAPI) FindOrdersByCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	orders, err := api.service.FindByCustomerID(c.Request.Context(), customerID)
	respondOrderList(c, orders, err)
}

// respondOrderList answers filtered queries; an empty result is a 404.
func respondOrderList(c *gin.Context, orders []*domain.Order, err error) {
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	if len(orders) == 0 {
		respondError(c, http.StatusNotFound, orderports.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainList(orders))
}

func bindOrderFields(c *gin.Context) (domain.OrderFields, bool) {
	var payload orderhttpmapper.MutationOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return domain.OrderFields{}, false
	}
	fields, err := orderhttpmapper.ToFields(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return domain.OrderFields{}, false
	}
	return fields, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}
