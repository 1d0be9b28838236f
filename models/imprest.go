package models

import (
	"strings"
	"time"
)

const (
	ImprestStatusDraft  = "draft"
	ImprestStatusProses = "proses"
	ImprestStatusClose  = "close"
)

// ValidImprestStatus reports whether s is one of draft, proses or close.
func ValidImprestStatus(s string) bool {
	switch s {
	case ImprestStatusDraft, ImprestStatusProses, ImprestStatusClose:
		return true
	}
	return false
}

type ImprestFund struct {
	ID               string        `json:"id"`
	KelompokKegiatan string        `json:"kelompok_kegiatan"`
	Status           string        `json:"status"`
	TotalAmount      int64         `json:"total_amount"`
	Items            []ImprestItem `json:"items"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type ImprestItem struct {
	ID          string     `json:"id"`
	Tanggal     time.Time  `json:"tanggal"`
	Uraian      string     `json:"uraian"`
	GLAccountID string     `json:"gl_account_id"`
	GLAccount   *GLAccount `json:"gl_account,omitempty"`
	Jumlah      int64      `json:"jumlah"`
}

// Complete reports whether the item can be submitted: dated, described,
// booked on a GL account and with a positive amount.
func (i ImprestItem) Complete() bool {
	return !i.Tanggal.IsZero() &&
		strings.TrimSpace(i.Uraian) != "" &&
		i.GLAccountID != "" &&
		i.Jumlah > 0
}

type ImprestRequest struct {
	KelompokKegiatan string        `json:"kelompok_kegiatan"`
	Items            []ImprestItem `json:"items"`
	Status           string        `json:"status"`
}

// TotalAmount sums the item amounts.
func (r *ImprestRequest) TotalAmount() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Jumlah
	}
	return total
}

// ItemsComplete reports whether every item passes Complete.
func (r *ImprestRequest) ItemsComplete() bool {
	for _, item := range r.Items {
		if !item.Complete() {
			return false
		}
	}
	return true
}

type ImprestStatusCounts struct {
	Draft  int `json:"draft"`
	Proses int `json:"proses"`
	Close  int `json:"close"`
	All    int `json:"all"`
}
