package routes

import (
	"testing"
	"time"

	"github.com/LovationAdmin/anggaran-api/handlers"
	"github.com/LovationAdmin/anggaran-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	imprestService := services.NewImprestService(nil, nil)
	wsHandler := handlers.NewWSHandler(imprestService, time.Second)
	defer wsHandler.Close()

	v1 := router.Group("/api/v1")
	SetupReferenceRoutes(v1, nil)
	SetupBudgetRoutes(v1, nil, wsHandler)
	SetupCalculatorRoutes(v1)
	SetupImprestRoutes(v1, imprestService)
	SetupWSRoutes(v1, wsHandler)

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /api/v1/gl-accounts",
		"POST /api/v1/gl-accounts",
		"GET /api/v1/regionals",
		"POST /api/v1/regionals",
		"GET /api/v1/budgets",
		"POST /api/v1/budgets",
		"GET /api/v1/budgets/:id",
		"PUT /api/v1/budgets/:id",
		"DELETE /api/v1/budgets/:id",
		"GET /api/v1/budgets/:id/allocations",
		"PUT /api/v1/budgets/:id/allocations",
		"POST /api/v1/budgets/:id/quarters/:quarter/split",
		"POST /api/v1/calculator/equal-split",
		"POST /api/v1/calculator/percentage-split",
		"POST /api/v1/calculator/reset",
		"POST /api/v1/calculator/summary",
		"POST /api/v1/calculator/release",
		"GET /api/v1/imprest-funds",
		"GET /api/v1/imprest-funds/counts",
		"POST /api/v1/imprest-funds",
		"GET /api/v1/imprest-funds/:id",
		"PUT /api/v1/imprest-funds/:id",
		"DELETE /api/v1/imprest-funds/:id",
		"GET /api/v1/ws/budgets/:id",
		"GET /api/v1/ws/imprest-drafts",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, registered, len(expected))
}
