package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/anggaran-api/models"

	"github.com/gin-gonic/gin"
)

type ImprestStore interface {
	List(ctx context.Context, status string) ([]models.ImprestFund, error)
	Get(ctx context.Context, id string) (*models.ImprestFund, error)
	Create(ctx context.Context, req models.ImprestRequest) (*models.ImprestFund, error)
	Update(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error)
	Delete(ctx context.Context, id string) error
	StatusCounts(ctx context.Context) (*models.ImprestStatusCounts, error)
}

type ImprestHandler struct {
	store ImprestStore
}

func NewImprestHandler(store ImprestStore) *ImprestHandler {
	return &ImprestHandler{store: store}
}

// GetImprestFunds lists funds, filtered by ?status= when given. "all" means no filter.
func (h *ImprestHandler) GetImprestFunds(c *gin.Context) {
	status := c.Query("status")
	if status == "all" {
		status = ""
	}

	funds, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "fetch imprest funds")
		return
	}
	c.JSON(http.StatusOK, funds)
}

func (h *ImprestHandler) GetStatusCounts(c *gin.Context) {
	counts, err := h.store.StatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "count imprest funds")
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *ImprestHandler) GetImprestFund(c *gin.Context) {
	fund, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "fetch imprest fund")
		return
	}
	c.JSON(http.StatusOK, fund)
}

func (h *ImprestHandler) CreateImprestFund(c *gin.Context) {
	var req models.ImprestRequest
	if !bindJSON(c, &req) {
		return
	}

	fund, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create imprest fund")
		return
	}
	c.JSON(http.StatusCreated, fund)
}

// UpdateImprestFund replaces the header and all items of a fund.
func (h *ImprestHandler) UpdateImprestFund(c *gin.Context) {
	var req models.ImprestRequest
	if !bindJSON(c, &req) {
		return
	}

	fund, err := h.store.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "update imprest fund")
		return
	}
	c.JSON(http.StatusOK, fund)
}

func (h *ImprestHandler) DeleteImprestFund(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "delete imprest fund")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Imprest fund deleted successfully"})
}
