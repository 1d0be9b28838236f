package handlers

import (
	"net/http"
	"testing"

	"github.com/LovationAdmin/anggaran-api/models"
	"github.com/LovationAdmin/anggaran-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestImprestHandler_List(t *testing.T) {
	tests := []struct {
		query  string
		status string
	}{
		{"", ""},
		{"?status=all", ""},
		{"?status=draft", "draft"},
		{"?status=proses", "proses"},
	}
	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			store := new(mockImprestStore)
			store.On("List", mock.Anything, tt.status).Return([]models.ImprestFund{}, nil)

			w := performRequest(t, NewImprestHandler(store).GetImprestFunds, http.MethodGet, "/imprest-funds"+tt.query, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			store.AssertExpectations(t)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("List", mock.Anything, "approved").Return(nil, services.ErrInvalidInput)

		w := performRequest(t, NewImprestHandler(store).GetImprestFunds, http.MethodGet, "/imprest-funds?status=approved", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestImprestHandler_Counts(t *testing.T) {
	store := new(mockImprestStore)
	store.On("StatusCounts", mock.Anything).Return(&models.ImprestStatusCounts{Draft: 2, Proses: 1, All: 3}, nil)

	w := performRequest(t, NewImprestHandler(store).GetStatusCounts, http.MethodGet, "/imprest-funds/counts", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"draft": 2, "proses": 1, "close": 0, "all": 3}`, w.Body.String())
}

func TestImprestHandler_CreateUpdateDelete(t *testing.T) {
	body := `{
		"kelompok_kegiatan": "Operasional",
		"status": "proses",
		"items": [{"tanggal": "2026-03-02T00:00:00Z", "uraian": "Konsumsi", "gl_account_id": "gl-1", "jumlah": 50000}]
	}`
	id := gin.Param{Key: "id", Value: "f-1"}

	t.Run("create", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("Create", mock.Anything, mock.MatchedBy(func(req models.ImprestRequest) bool {
			return req.KelompokKegiatan == "Operasional" && req.TotalAmount() == 50000
		})).Return(&models.ImprestFund{ID: "f-1", Status: "proses", TotalAmount: 50000}, nil)

		w := performRequest(t, NewImprestHandler(store).CreateImprestFund, http.MethodPost, "/imprest-funds", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int64(50000), decode[models.ImprestFund](t, w).TotalAmount)
	})

	t.Run("create without items", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidInput)

		w := performRequest(t, NewImprestHandler(store).CreateImprestFund, http.MethodPost, "/imprest-funds",
			`{"kelompok_kegiatan": "Operasional"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update closed fund", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("Update", mock.Anything, "f-1", mock.Anything).Return(nil, services.ErrConflict)

		w := performRequest(t, NewImprestHandler(store).UpdateImprestFund, http.MethodPut, "/imprest-funds/f-1", body, id)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete missing", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("Delete", mock.Anything, "f-1").Return(services.ErrNotFound)

		w := performRequest(t, NewImprestHandler(store).DeleteImprestFund, http.MethodDelete, "/imprest-funds/f-1", nil, id)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		store := new(mockImprestStore)
		store.On("Get", mock.Anything, "f-1").Return(&models.ImprestFund{ID: "f-1", Items: []models.ImprestItem{}}, nil)

		w := performRequest(t, NewImprestHandler(store).GetImprestFund, http.MethodGet, "/imprest-funds/f-1", nil, id)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
