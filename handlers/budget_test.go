package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/LovationAdmin/anggaran-api/allocation"
	"github.com/LovationAdmin/anggaran-api/models"
	"github.com/LovationAdmin/anggaran-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("filters by year", func(t *testing.T) {
		store := new(mockBudgetStore)
		store.On("List", mock.Anything, 2026).Return([]models.Budget{{ID: "b-1", Year: 2026}}, nil)

		w := performRequest(t, NewBudgetHandler(store, nil).GetBudgets, http.MethodGet, "/budgets?year=2026", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		budgets := decode[[]models.Budget](t, w)
		assert.Len(t, budgets, 1)
		store.AssertExpectations(t)
	})

	t.Run("no year lists everything", func(t *testing.T) {
		store := new(mockBudgetStore)
		store.On("List", mock.Anything, 0).Return([]models.Budget{}, nil)

		w := performRequest(t, NewBudgetHandler(store, nil).GetBudgets, http.MethodGet, "/budgets", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("bad year", func(t *testing.T) {
		store := new(mockBudgetStore)
		w := performRequest(t, NewBudgetHandler(store, nil).GetBudgets, http.MethodGet, "/budgets?year=abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestBudgetHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound, "not found"},
		{"invalid input", fmt.Errorf("%w: release percent must be between 0 and 100", services.ErrInvalidInput), http.StatusBadRequest, "release percent"},
		{"calculator argument", fmt.Errorf("%w: at least one bucket is required", allocation.ErrInvalidArgument), http.StatusBadRequest, "bucket"},
		{"conflict", services.ErrConflict, http.StatusConflict, "conflict"},
		{"database failure", errors.New("connection reset"), http.StatusInternalServerError, "Failed to fetch budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockBudgetStore)
			store.On("Get", mock.Anything, "b-1").Return(nil, tt.err)

			w := performRequest(t, NewBudgetHandler(store, nil).GetBudget, http.MethodGet, "/budgets/b-1", nil,
				gin.Param{Key: "id", Value: "b-1"})

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, decode[map[string]string](t, w)["error"], tt.body)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		req := models.BudgetRequest{GLAccountID: "gl-1", Year: 2026, RKAP: 4_000_000, AutoSplit: true}
		store := new(mockBudgetStore)
		store.On("Create", mock.Anything, req).Return(&models.Budget{ID: "b-1", TotalAmount: 4_000_000}, nil)

		w := performRequest(t, NewBudgetHandler(store, nil).CreateBudget, http.MethodPost, "/budgets", req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "b-1", decode[models.Budget](t, w).ID)
		store.AssertExpectations(t)
	})

	t.Run("binding rejects missing fields", func(t *testing.T) {
		store := new(mockBudgetStore)
		w := performRequest(t, NewBudgetHandler(store, nil).CreateBudget, http.MethodPost, "/budgets", `{"rkap": 10}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate gl account and year", func(t *testing.T) {
		store := new(mockBudgetStore)
		store.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrConflict)

		w := performRequest(t, NewBudgetHandler(store, nil).CreateBudget, http.MethodPost, "/budgets",
			models.BudgetRequest{GLAccountID: "gl-1", Year: 2026})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBudgetHandler_UpdateAndDeleteNotify(t *testing.T) {
	id := gin.Param{Key: "id", Value: "b-1"}

	t.Run("update", func(t *testing.T) {
		store := new(mockBudgetStore)
		notifier := new(mockNotifier)
		store.On("Update", mock.Anything, "b-1", mock.Anything).Return(&models.Budget{ID: "b-1"}, nil)
		notifier.On("BroadcastUpdate", "b-1", "budget_updated").Return()

		w := performRequest(t, NewBudgetHandler(store, notifier).UpdateBudget, http.MethodPut, "/budgets/b-1",
			models.BudgetRequest{GLAccountID: "gl-1", Year: 2026}, id)

		assert.Equal(t, http.StatusOK, w.Code)
		notifier.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		store := new(mockBudgetStore)
		notifier := new(mockNotifier)
		store.On("Delete", mock.Anything, "b-1").Return(nil)
		notifier.On("BroadcastUpdate", "b-1", "budget_deleted").Return()

		w := performRequest(t, NewBudgetHandler(store, notifier).DeleteBudget, http.MethodDelete, "/budgets/b-1", nil, id)

		assert.Equal(t, http.StatusOK, w.Code)
		notifier.AssertExpectations(t)
	})

	t.Run("failed update does not notify", func(t *testing.T) {
		store := new(mockBudgetStore)
		notifier := new(mockNotifier)
		store.On("Update", mock.Anything, "b-1", mock.Anything).Return(nil, services.ErrNotFound)

		w := performRequest(t, NewBudgetHandler(store, notifier).UpdateBudget, http.MethodPut, "/budgets/b-1",
			models.BudgetRequest{GLAccountID: "gl-1", Year: 2026}, id)

		assert.Equal(t, http.StatusNotFound, w.Code)
		notifier.AssertNotCalled(t, "BroadcastUpdate", mock.Anything, mock.Anything)
	})
}

func TestBudgetHandler_Allocations(t *testing.T) {
	id := gin.Param{Key: "id", Value: "b-1"}
	allocs := []models.Allocation{
		{Quarter: 1, RegionalCode: "JKT", Amount: 600, Percentage: 60},
		{Quarter: 1, RegionalCode: "SBY", Amount: 400, Percentage: 40},
	}

	t.Run("load empty partition", func(t *testing.T) {
		store := new(mockBudgetStore)
		store.On("LoadAllocations", mock.Anything, "b-1").Return([]models.Allocation{}, nil)

		w := performRequest(t, NewBudgetHandler(store, nil).GetAllocations, http.MethodGet, "/budgets/b-1/allocations", nil, id)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"allocations": []}`, w.Body.String())
	})

	t.Run("save broadcasts", func(t *testing.T) {
		store := new(mockBudgetStore)
		notifier := new(mockNotifier)
		store.On("SaveAllocations", mock.Anything, "b-1", allocs).Return(allocs, nil)
		notifier.On("BroadcastUpdate", "b-1", "allocations_updated").Return()

		w := performRequest(t, NewBudgetHandler(store, notifier).SaveAllocations, http.MethodPut, "/budgets/b-1/allocations",
			models.SaveAllocationsRequest{Allocations: allocs}, id)

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("save rejects out of range quarter", func(t *testing.T) {
		store := new(mockBudgetStore)
		w := performRequest(t, NewBudgetHandler(store, nil).SaveAllocations, http.MethodPut, "/budgets/b-1/allocations",
			`{"allocations": [{"quarter": 7, "regional_code": "JKT", "amount": 5}]}`, id)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "SaveAllocations", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBudgetHandler_SplitQuarter(t *testing.T) {
	id := gin.Param{Key: "id", Value: "b-1"}

	t.Run("equal", func(t *testing.T) {
		req := models.SplitQuarterRequest{Mode: "equal"}
		split := &models.QuarterSplit{BudgetID: "b-1", Quarter: 2, Target: 100}
		store := new(mockBudgetStore)
		store.On("SplitQuarter", mock.Anything, "b-1", 2, req).Return(split, nil)

		w := performRequest(t, NewBudgetHandler(store, nil).SplitQuarter, http.MethodPost, "/budgets/b-1/quarters/2/split", req,
			id, gin.Param{Key: "quarter", Value: "2"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decode[models.QuarterSplit](t, w).Quarter)
	})

	for _, q := range []string{"0", "5", "q1"} {
		t.Run("bad quarter "+q, func(t *testing.T) {
			store := new(mockBudgetStore)
			w := performRequest(t, NewBudgetHandler(store, nil).SplitQuarter, http.MethodPost, "/budgets/b-1/quarters/"+q+"/split",
				models.SplitQuarterRequest{Mode: "equal"}, id, gin.Param{Key: "quarter", Value: q})

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("unknown mode", func(t *testing.T) {
		store := new(mockBudgetStore)
		w := performRequest(t, NewBudgetHandler(store, nil).SplitQuarter, http.MethodPost, "/budgets/b-1/quarters/1/split",
			`{"mode": "weighted"}`, id, gin.Param{Key: "quarter", Value: "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
