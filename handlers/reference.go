package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/anggaran-api/models"

	"github.com/gin-gonic/gin"
)

type ReferenceStore interface {
	ListGLAccounts(ctx context.Context) ([]models.GLAccount, error)
	CreateGLAccount(ctx context.Context, gl models.GLAccount) (*models.GLAccount, error)
	ListRegionals(ctx context.Context) ([]models.Regional, error)
	CreateRegional(ctx context.Context, r models.Regional) (*models.Regional, error)
}

type ReferenceHandler struct {
	store ReferenceStore
}

func NewReferenceHandler(store ReferenceStore) *ReferenceHandler {
	return &ReferenceHandler{store: store}
}

func (h *ReferenceHandler) GetGLAccounts(c *gin.Context) {
	accounts, err := h.store.ListGLAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "fetch GL accounts")
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *ReferenceHandler) CreateGLAccount(c *gin.Context) {
	var req models.GLAccount
	if !bindJSON(c, &req) {
		return
	}
	req.Code = trimmed(req.Code)
	req.Description = trimmed(req.Description)
	if req.Code == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and description are required"})
		return
	}

	account, err := h.store.CreateGLAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create GL account")
		return
	}
	c.JSON(http.StatusCreated, account)
}

// GetRegionals returns regionals in bucket order.
func (h *ReferenceHandler) GetRegionals(c *gin.Context) {
	regionals, err := h.store.ListRegionals(c.Request.Context())
	if err != nil {
		respondError(c, err, "fetch regionals")
		return
	}
	c.JSON(http.StatusOK, regionals)
}

func (h *ReferenceHandler) CreateRegional(c *gin.Context) {
	var req models.Regional
	if !bindJSON(c, &req) {
		return
	}
	req.Code = trimmed(req.Code)
	req.Name = trimmed(req.Name)
	if req.Code == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and name are required"})
		return
	}

	regional, err := h.store.CreateRegional(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create regional")
		return
	}
	c.JSON(http.StatusCreated, regional)
}
