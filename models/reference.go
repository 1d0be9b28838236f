package models

type GLAccount struct {
	ID          string `json:"id"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"required"`
	Keterangan  string `json:"keterangan"`
}

// Regional is a region receiving allocations. SortOrder fixes its bucket position.
type Regional struct {
	ID        string `json:"id"`
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}
