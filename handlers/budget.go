package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/LovationAdmin/anggaran-api/models"

	"github.com/gin-gonic/gin"
)

type BudgetStore interface {
	List(ctx context.Context, year int) ([]models.Budget, error)
	Get(ctx context.Context, id string) (*models.Budget, error)
	Create(ctx context.Context, req models.BudgetRequest) (*models.Budget, error)
	Update(ctx context.Context, id string, req models.BudgetRequest) (*models.Budget, error)
	Delete(ctx context.Context, id string) error
	LoadAllocations(ctx context.Context, budgetID string) ([]models.Allocation, error)
	SaveAllocations(ctx context.Context, budgetID string, allocs []models.Allocation) ([]models.Allocation, error)
	SplitQuarter(ctx context.Context, budgetID string, quarter int, req models.SplitQuarterRequest) (*models.QuarterSplit, error)
}

// BudgetNotifier tells clients watching a budget that it changed.
type BudgetNotifier interface {
	BroadcastUpdate(budgetID, updateType string)
}

type BudgetHandler struct {
	store    BudgetStore
	notifier BudgetNotifier
}

func NewBudgetHandler(store BudgetStore, notifier BudgetNotifier) *BudgetHandler {
	return &BudgetHandler{store: store, notifier: notifier}
}

// GetBudgets lists budgets, filtered by ?year= when given.
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		year = y
	}

	budgets, err := h.store.List(c.Request.Context(), year)
	if err != nil {
		respondError(c, err, "fetch budgets")
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budget, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch budget")
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req models.BudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create budget")
		return
	}
	c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req models.BudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budgetID := c.Param("id")
	budget, err := h.store.Update(c.Request.Context(), budgetID, req)
	if err != nil {
		respondError(c, err, "update budget")
		return
	}
	h.notify(budgetID, "budget_updated")
	c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budgetID := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), budgetID); err != nil {
		respondError(c, err, "delete budget")
		return
	}
	h.notify(budgetID, "budget_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetAllocations returns the saved regional partition of a budget.
func (h *BudgetHandler) GetAllocations(c *gin.Context) {
	allocs, err := h.store.LoadAllocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch allocations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocations": allocs})
}

// SaveAllocations replaces the regional partition of a budget.
func (h *BudgetHandler) SaveAllocations(c *gin.Context) {
	var req models.SaveAllocationsRequest
	if !bindJSON(c, &req) {
		return
	}

	budgetID := c.Param("id")
	allocs, err := h.store.SaveAllocations(c.Request.Context(), budgetID, req.Allocations)
	if err != nil {
		respondError(c, err, "save allocations")
		return
	}
	h.notify(budgetID, "allocations_updated")
	c.JSON(http.StatusOK, gin.H{"allocations": allocs})
}

// SplitQuarter computes an unsaved regional partition of one quarter.
func (h *BudgetHandler) SplitQuarter(c *gin.Context) {
	quarter, err := strconv.Atoi(c.Param("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quarter must be between 1 and 4"})
		return
	}

	var req models.SplitQuarterRequest
	if !bindJSON(c, &req) {
		return
	}

	split, err := h.store.SplitQuarter(c.Request.Context(), c.Param("id"), quarter, req)
	if err != nil {
		respondError(c, err, "split quarter")
		return
	}
	c.JSON(http.StatusOK, split)
}

func (h *BudgetHandler) notify(budgetID, updateType string) {
	if h.notifier != nil {
		h.notifier.BroadcastUpdate(budgetID, updateType)
	}
}
