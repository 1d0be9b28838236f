package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/LovationAdmin/anggaran-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBudgetStore struct {
	mock.Mock
}

func (m *mockBudgetStore) List(ctx context.Context, year int) ([]models.Budget, error) {
	args := m.Called(ctx, year)
	budgets, _ := args.Get(0).([]models.Budget)
	return budgets, args.Error(1)
}

func (m *mockBudgetStore) Get(ctx context.Context, id string) (*models.Budget, error) {
	args := m.Called(ctx, id)
	budget, _ := args.Get(0).(*models.Budget)
	return budget, args.Error(1)
}

func (m *mockBudgetStore) Create(ctx context.Context, req models.BudgetRequest) (*models.Budget, error) {
	args := m.Called(ctx, req)
	budget, _ := args.Get(0).(*models.Budget)
	return budget, args.Error(1)
}

func (m *mockBudgetStore) Update(ctx context.Context, id string, req models.BudgetRequest) (*models.Budget, error) {
	args := m.Called(ctx, id, req)
	budget, _ := args.Get(0).(*models.Budget)
	return budget, args.Error(1)
}

func (m *mockBudgetStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBudgetStore) LoadAllocations(ctx context.Context, budgetID string) ([]models.Allocation, error) {
	args := m.Called(ctx, budgetID)
	allocs, _ := args.Get(0).([]models.Allocation)
	return allocs, args.Error(1)
}

func (m *mockBudgetStore) SaveAllocations(ctx context.Context, budgetID string, allocs []models.Allocation) ([]models.Allocation, error) {
	args := m.Called(ctx, budgetID, allocs)
	saved, _ := args.Get(0).([]models.Allocation)
	return saved, args.Error(1)
}

func (m *mockBudgetStore) SplitQuarter(ctx context.Context, budgetID string, quarter int, req models.SplitQuarterRequest) (*models.QuarterSplit, error) {
	args := m.Called(ctx, budgetID, quarter, req)
	split, _ := args.Get(0).(*models.QuarterSplit)
	return split, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastUpdate(budgetID, updateType string) {
	m.Called(budgetID, updateType)
}

type mockImprestStore struct {
	mock.Mock
}

func (m *mockImprestStore) List(ctx context.Context, status string) ([]models.ImprestFund, error) {
	args := m.Called(ctx, status)
	funds, _ := args.Get(0).([]models.ImprestFund)
	return funds, args.Error(1)
}

func (m *mockImprestStore) Get(ctx context.Context, id string) (*models.ImprestFund, error) {
	args := m.Called(ctx, id)
	fund, _ := args.Get(0).(*models.ImprestFund)
	return fund, args.Error(1)
}

func (m *mockImprestStore) Create(ctx context.Context, req models.ImprestRequest) (*models.ImprestFund, error) {
	args := m.Called(ctx, req)
	fund, _ := args.Get(0).(*models.ImprestFund)
	return fund, args.Error(1)
}

func (m *mockImprestStore) Update(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error) {
	args := m.Called(ctx, id, req)
	fund, _ := args.Get(0).(*models.ImprestFund)
	return fund, args.Error(1)
}

func (m *mockImprestStore) UpdateDraft(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error) {
	args := m.Called(ctx, id, req)
	fund, _ := args.Get(0).(*models.ImprestFund)
	return fund, args.Error(1)
}

func (m *mockImprestStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockImprestStore) StatusCounts(ctx context.Context) (*models.ImprestStatusCounts, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(*models.ImprestStatusCounts)
	return counts, args.Error(1)
}

type mockReferenceStore struct {
	mock.Mock
}

func (m *mockReferenceStore) ListGLAccounts(ctx context.Context) ([]models.GLAccount, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]models.GLAccount)
	return accounts, args.Error(1)
}

func (m *mockReferenceStore) CreateGLAccount(ctx context.Context, gl models.GLAccount) (*models.GLAccount, error) {
	args := m.Called(ctx, gl)
	account, _ := args.Get(0).(*models.GLAccount)
	return account, args.Error(1)
}

func (m *mockReferenceStore) ListRegionals(ctx context.Context) ([]models.Regional, error) {
	args := m.Called(ctx)
	regionals, _ := args.Get(0).([]models.Regional)
	return regionals, args.Error(1)
}

func (m *mockReferenceStore) CreateRegional(ctx context.Context, r models.Regional) (*models.Regional, error) {
	args := m.Called(ctx, r)
	regional, _ := args.Get(0).(*models.Regional)
	return regional, args.Error(1)
}

// performRequest runs handler against a test context built from the arguments.
func performRequest(t *testing.T, handler gin.HandlerFunc, method, target string, body any, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handler(c)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
