package dto

import (
	"time"

	"facturago/internal/domain/series"
)

// CreateSeriesRequest is the payload for creating a numbering series.
type CreateSeriesRequest struct {
	Pattern   string `json:"pattern" binding:"required"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
}

// ToEntity builds a series entity. Owner comes from the caller's context,
// never from the payload.
func (r CreateSeriesRequest) ToEntity(ownerID string) *series.Series {
	typ := series.Type(r.Type)
	if r.Type == "" {
		typ = series.TypeStandard
	}
	return series.New(ownerID, r.Pattern, typ, r.IsDefault)
}

// UpdateSeriesRequest is the payload for updating a series.
type UpdateSeriesRequest struct {
	Pattern   *string `json:"pattern"`
	IsDefault *bool   `json:"isDefault"`
}

// ApplyTo applies changed fields to an existing series.
func (r UpdateSeriesRequest) ApplyTo(s *series.Series) {
	if r.Pattern != nil {
		s.Pattern = *r.Pattern
	}
	if r.IsDefault != nil {
		s.IsDefault = *r.IsDefault
	}
}

// SeriesResponse describes a numbering series.
type SeriesResponse struct {
	BaseResponse
	Pattern   string    `json:"pattern"`
	Counter   int       `json:"counter"`
	IsDefault bool      `json:"isDefault"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromSeries maps a series entity.
func FromSeries(s *series.Series) *SeriesResponse {
	return &SeriesResponse{
		BaseResponse: FromBaseEntity(s.BaseEntity),
		Pattern:      s.Pattern,
		Counter:      s.Counter,
		IsDefault:    s.IsDefault,
		Type:         string(s.Type),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
