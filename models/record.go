package models

import (
	"github.com/google/uuid"
)

const (
	// MaxTotalOrder is the upper bound for generated total order counters
	MaxTotalOrder = 1000
)

// Column positions of the workbook layout. The layout is positional: readers
// locate fields by index, never by header text.
const (
	ColID = iota
	ColRegion
	ColMunicipality
	ColCompany
	ColPhone
	ColContact
	ColTotalOrder
	ColRecentOrder
)

// RecordHeaders is the header row written at row 1 of every records sheet
var RecordHeaders = []string{
	"ID",
	"Region",
	"Municipality",
	"Company",
	"Phone",
	"Contact",
	"TotalOrder",
	"RecentOrder",
}

// Record represents one synthetic business contact
type Record struct {
	ID           uuid.UUID `json:"id"`
	Region       string    `json:"region"`
	Municipality string    `json:"municipality"`
	Company      string    `json:"company"`
	Phone        string    `json:"phone"`
	Contact      string    `json:"contact"`
	TotalOrder   uint32    `json:"total_order"`
	RecentOrder  uint32    `json:"recent_order"`
}
