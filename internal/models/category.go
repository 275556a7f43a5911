package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Columns the service categories table may be sorted by
const (
	SortByName           = "name"
	SortByIsActive       = "isActive"
	SortBySortOrder      = "sortOrder"
	SortByTotalProviders = "totalProviders"
	SortByTotalBookings  = "totalBookings"
	SortByAverageRating  = "averageRating"
	SortByCreatedAt      = "createdAt"
)

const DefaultPageSize = 20

type ServiceCategory struct {
	ID                       string        `json:"_id"`
	Name                     string        `json:"name"`
	Description              string        `json:"description"`
	Icon                     string        `json:"icon"`
	Color                    string        `json:"color"`
	IsActive                 bool          `json:"isActive"`
	SortOrder                int           `json:"sortOrder"`
	TotalProviders           *int          `json:"totalProviders,omitempty"`
	TotalBookings            *int          `json:"totalBookings,omitempty"`
	AverageRating            *float64      `json:"averageRating,omitempty"`
	CreatedBy                *Actor        `json:"createdBy,omitempty"`
	UpdatedBy                *Actor        `json:"updatedBy,omitempty"`
	CreatedAt                time.Time     `json:"createdAt"`
	UpdatedAt                *time.Time    `json:"updatedAt,omitempty"`
	Subcategories            []Subcategory `json:"subcategories,omitempty"`
	AveragePriceRange        *PriceRange   `json:"averagePriceRange,omitempty"`
	AverageDuration          *int          `json:"averageDuration,omitempty"`
	RequiresLicense          bool          `json:"requiresLicense"`
	RequiresSpecialEquipment bool          `json:"requiresSpecialEquipment"`
	Slug                     string        `json:"slug,omitempty"`
	MetaTitle                string        `json:"metaTitle,omitempty"`
	MetaDescription          string        `json:"metaDescription,omitempty"`
}

type Subcategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsActive    bool   `json:"isActive"`
}

// Admin who created or updated a category
type Actor struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// PriceRange is sent and received as plain JSON numbers
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (p PriceRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min json.Number `json:"min"`
		Max json.Number `json:"max"`
	}{
		Min: json.Number(p.Min.String()),
		Max: json.Number(p.Max.String()),
	})
}

// CategoryRequest is the body of create and update calls
type CategoryRequest struct {
	Name                     string      `json:"name"`
	Description              string      `json:"description"`
	Icon                     string      `json:"icon"`
	Color                    string      `json:"color,omitempty"`
	SortOrder                int         `json:"sortOrder"`
	AveragePriceRange        *PriceRange `json:"averagePriceRange,omitempty"`
	AverageDuration          int         `json:"averageDuration"`
	IsActive                 bool        `json:"isActive"`
	RequiresLicense          bool        `json:"requiresLicense"`
	RequiresSpecialEquipment bool        `json:"requiresSpecialEquipment"`
	MetaTitle                string      `json:"metaTitle,omitempty"`
	MetaDescription          string      `json:"metaDescription,omitempty"`
}

// Params of server side pagination, sorting and search
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

type CategoryPage struct {
	Categories []ServiceCategory `json:"categories"`
	Pagination Pagination        `json:"pagination"`
}
