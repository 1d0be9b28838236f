package handlers

import (
	"net/http"

	"github.com/LovationAdmin/anggaran-api/allocation"

	"github.com/gin-gonic/gin"
)

// CalculatorHandler exposes the allocation calculator without touching storage.
type CalculatorHandler struct{}

func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

// EqualSplitRequest splits Total over Count anonymous buckets, or over Names
// when given.
type EqualSplitRequest struct {
	Total int64    `json:"total" binding:"min=0"`
	Count int      `json:"count"`
	Names []string `json:"names"`
}

type PercentageSplitRequest struct {
	Total       int64              `json:"total" binding:"min=0"`
	Percentages map[string]float64 `json:"percentages"`
	Order       []string           `json:"order" binding:"required"`
}

type ResetRequest struct {
	Names []string `json:"names" binding:"required"`
}

type SummaryRequest struct {
	Target  int64                `json:"target"`
	Buckets allocation.Partition `json:"buckets"`
}

type ReleaseRequest struct {
	RKAP           int64   `json:"rkap" binding:"min=0"`
	ReleasePercent float64 `json:"release_percent"`
}

type partitionResponse struct {
	Buckets allocation.Partition `json:"buckets"`
	Totals  allocation.Totals    `json:"totals"`
}

func (h *CalculatorHandler) EqualSplit(c *gin.Context) {
	var req EqualSplitRequest
	if !bindJSON(c, &req) {
		return
	}

	if len(req.Names) == 0 {
		amounts, err := allocation.EqualSplit(req.Total, req.Count)
		if err != nil {
			respondError(c, err, "split total")
			return
		}
		c.JSON(http.StatusOK, gin.H{"amounts": amounts})
		return
	}

	p, err := allocation.EqualPartition(req.Total, req.Names)
	if err != nil {
		respondError(c, err, "split total")
		return
	}
	c.JSON(http.StatusOK, partitionResponse{Buckets: p, Totals: allocation.Summarize(req.Total, p)})
}

func (h *CalculatorHandler) PercentageSplit(c *gin.Context) {
	var req PercentageSplitRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := allocation.PercentagePartition(req.Total, req.Percentages, req.Order)
	if err != nil {
		respondError(c, err, "split total")
		return
	}
	c.JSON(http.StatusOK, partitionResponse{Buckets: p, Totals: allocation.Summarize(req.Total, p)})
}

func (h *CalculatorHandler) Reset(c *gin.Context) {
	var req ResetRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": allocation.Reset(req.Names)})
}

func (h *CalculatorHandler) Summary(c *gin.Context) {
	var req SummaryRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, allocation.Summarize(req.Target, req.Buckets))
}

// Release returns the release amount of an RKAP figure and its quarter split.
func (h *CalculatorHandler) Release(c *gin.Context) {
	var req ReleaseRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := allocation.ReleaseAmount(req.RKAP, req.ReleasePercent)
	if err != nil {
		respondError(c, err, "compute release amount")
		return
	}
	quarters, err := allocation.SplitQuarters(amount)
	if err != nil {
		respondError(c, err, "compute release amount")
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_amount": amount, "quarters": quarters})
}
