// Package dto defines the request and response shapes of API v1 and
// their mapping to domain entities.
package dto

import (
	"facturago/internal/core/entity"
)

// IDResponse carries the id of a newly created entity.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse confirms an operation with no payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListResponse is one page of items plus the unpaged total.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// BaseResponse holds the fields every entity response shares.
type BaseResponse struct {
	ID           string            `json:"id"`
	DeletionMark bool              `json:"deletionMark"`
	Version      int               `json:"version"`
	Attributes   entity.Attributes `json:"attributes,omitempty"`
}

// FromBaseEntity maps the embedded base of an entity.
func FromBaseEntity(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:           b.ID.String(),
		DeletionMark: b.DeletionMark,
		Version:      b.Version,
		Attributes:   b.Attributes,
	}
}
