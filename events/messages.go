package events

import (
	"encoding/json"
	"time"
)

// ImprestSubmitted is published when an imprest fund moves to "proses".
type ImprestSubmitted struct {
	ImprestFundID    string    `json:"imprest_fund_id"`
	KelompokKegiatan string    `json:"kelompok_kegiatan"`
	TotalAmount      int64     `json:"total_amount"`
	ItemCount        int       `json:"item_count"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

func (m *ImprestSubmitted) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ImprestSubmittedFromJSON(data []byte) (*ImprestSubmitted, error) {
	var msg ImprestSubmitted
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
