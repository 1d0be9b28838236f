package models

import (
	"time"

	"github.com/LovationAdmin/anggaran-api/allocation"
)

type Budget struct {
	ID             string       `json:"id"`
	GLAccountID    string       `json:"gl_account_id"`
	Year           int          `json:"year"`
	RKAP           int64        `json:"rkap"`
	ReleasePercent float64      `json:"release_percent"`
	TotalAmount    int64        `json:"total_amount"`
	Q1Amount       int64        `json:"q1_amount"`
	Q2Amount       int64        `json:"q2_amount"`
	Q3Amount       int64        `json:"q3_amount"`
	Q4Amount       int64        `json:"q4_amount"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	GLAccount      *GLAccount   `json:"gl_account,omitempty"`
	Allocations    []Allocation `json:"allocations"`
}

// QuarterAmount returns the amount of quarter 1..4, or 0 for any other quarter.
func (b *Budget) QuarterAmount(quarter int) int64 {
	switch quarter {
	case 1:
		return b.Q1Amount
	case 2:
		return b.Q2Amount
	case 3:
		return b.Q3Amount
	case 4:
		return b.Q4Amount
	}
	return 0
}

// QuarterSum is q1+q2+q3+q4, compared against TotalAmount by the edit form.
func (b *Budget) QuarterSum() int64 {
	return b.Q1Amount + b.Q2Amount + b.Q3Amount + b.Q4Amount
}

// Allocation is one regional bucket of one quarter.
type Allocation struct {
	Quarter      int     `json:"quarter" binding:"required,min=1,max=4"`
	RegionalCode string  `json:"regional_code" binding:"required"`
	Amount       int64   `json:"amount" binding:"min=0"`
	Percentage   float64 `json:"percentage"`
}

type BudgetRequest struct {
	GLAccountID    string   `json:"gl_account_id" binding:"required"`
	Year           int      `json:"year" binding:"required,min=2000,max=2100"`
	RKAP           int64    `json:"rkap" binding:"min=0"`
	ReleasePercent *float64 `json:"release_percent"`
	Q1Amount       int64    `json:"q1_amount" binding:"min=0"`
	Q2Amount       int64    `json:"q2_amount" binding:"min=0"`
	Q3Amount       int64    `json:"q3_amount" binding:"min=0"`
	Q4Amount       int64    `json:"q4_amount" binding:"min=0"`
	// AutoSplit replaces the quarter amounts with an equal split of the release amount.
	AutoSplit bool `json:"auto_split"`
}

type SaveAllocationsRequest struct {
	Allocations []Allocation `json:"allocations" binding:"dive"`
}

// SplitQuarterRequest drives the regional split of one quarter.
type SplitQuarterRequest struct {
	Mode        string             `json:"mode" binding:"required,oneof=equal percentage reset"`
	Percentages map[string]float64 `json:"percentages"`
}

// QuarterSplit is a computed, unsaved regional partition of one quarter.
type QuarterSplit struct {
	BudgetID string               `json:"budget_id"`
	Quarter  int                  `json:"quarter"`
	Target   int64                `json:"target"`
	Buckets  allocation.Partition `json:"buckets"`
	Totals   allocation.Totals    `json:"totals"`
}
