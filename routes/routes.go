package routes

import (
	"database/sql"

	"github.com/LovationAdmin/anggaran-api/handlers"
	"github.com/LovationAdmin/anggaran-api/services"

	"github.com/gin-gonic/gin"
)

// SetupReferenceRoutes sets up GL account and regional master data routes.
func SetupReferenceRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := handlers.NewReferenceHandler(services.NewReferenceService(db))

	rg.GET("/gl-accounts", h.GetGLAccounts)
	rg.POST("/gl-accounts", h.CreateGLAccount)
	rg.GET("/regionals", h.GetRegionals)
	rg.POST("/regionals", h.CreateRegional)
}

// SetupBudgetRoutes sets up budget and allocation routes. Changes are pushed to
// clients watching the budget through wsHandler.
func SetupBudgetRoutes(rg *gin.RouterGroup, db *sql.DB, wsHandler *handlers.WSHandler) {
	h := handlers.NewBudgetHandler(services.NewBudgetService(db), wsHandler)

	rg.GET("/budgets", h.GetBudgets)
	rg.POST("/budgets", h.CreateBudget)
	rg.GET("/budgets/:id", h.GetBudget)
	rg.PUT("/budgets/:id", h.UpdateBudget)
	rg.DELETE("/budgets/:id", h.DeleteBudget)

	rg.GET("/budgets/:id/allocations", h.GetAllocations)
	rg.PUT("/budgets/:id/allocations", h.SaveAllocations)
	rg.POST("/budgets/:id/quarters/:quarter/split", h.SplitQuarter)
}

// SetupCalculatorRoutes sets up the stateless allocation calculator.
func SetupCalculatorRoutes(rg *gin.RouterGroup) {
	h := handlers.NewCalculatorHandler()

	calc := rg.Group("/calculator")
	calc.POST("/equal-split", h.EqualSplit)
	calc.POST("/percentage-split", h.PercentageSplit)
	calc.POST("/reset", h.Reset)
	calc.POST("/summary", h.Summary)
	calc.POST("/release", h.Release)
}

// SetupImprestRoutes sets up imprest fund routes.
func SetupImprestRoutes(rg *gin.RouterGroup, imprestService *services.ImprestService) {
	h := handlers.NewImprestHandler(imprestService)

	rg.GET("/imprest-funds", h.GetImprestFunds)
	rg.GET("/imprest-funds/counts", h.GetStatusCounts)
	rg.POST("/imprest-funds", h.CreateImprestFund)
	rg.GET("/imprest-funds/:id", h.GetImprestFund)
	rg.PUT("/imprest-funds/:id", h.UpdateImprestFund)
	rg.DELETE("/imprest-funds/:id", h.DeleteImprestFund)
}

// SetupWSRoutes sets up websocket endpoints.
func SetupWSRoutes(rg *gin.RouterGroup, wsHandler *handlers.WSHandler) {
	rg.GET("/ws/budgets/:id", wsHandler.HandleBudgetWS)
	rg.GET("/ws/imprest-drafts", wsHandler.HandleDraftWS)
}
