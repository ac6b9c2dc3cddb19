package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers served by the router.
type ApiHandleFunctions struct {
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the operational endpoints
	HealthAPI HealthAPI
	// Metrics serves the Prometheus exposition, nil to skip /metrics.
	Metrics gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	router.NoRoute(func(c *gin.Context) {
		respondProblem(c, apierrors.ErrNotFound.WithDetail("no route matches "+c.Request.Method+" "+c.Request.URL.Path))
	})
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	routes := []Route{
		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders},
		{"CreateOrder", http.MethodPost, "/orders", handleFunctions.OrderAPI.CreateOrder},
		{"CountOrders", http.MethodGet, "/orders/count", handleFunctions.OrderAPI.CountOrders},
		{"GetOrderById", http.MethodGet, "/orders/:id", handleFunctions.OrderAPI.GetOrderById},
		{"ReplaceOrder", http.MethodPut, "/orders/:id", handleFunctions.OrderAPI.ReplaceOrder},
		{"DeleteOrder", http.MethodDelete, "/orders/:id", handleFunctions.OrderAPI.DeleteOrder},
		{"SetOrderStatus", http.MethodPut, "/orders/:id/status/:status", handleFunctions.OrderAPI.SetOrderStatus},
		{"FindOrdersByStatus", http.MethodGet, "/orders/status/:status", handleFunctions.OrderAPI.FindOrdersByStatus},
		{"FindOrdersByCreationDate", http.MethodGet, "/orders/creationDate/:date", handleFunctions.OrderAPI.FindOrdersByCreationDate},
		{"FindOrdersByCustomer", http.MethodGet, "/orders/customer/:customerId", handleFunctions.OrderAPI.FindOrdersByCustomer},
		{"Health", http.MethodGet, "/health", handleFunctions.HealthAPI.Health},
	}
	if handleFunctions.Metrics != nil {
		routes = append(routes, Route{"Metrics", http.MethodGet, "/metrics", handleFunctions.Metrics})
	}
	return routes
}
