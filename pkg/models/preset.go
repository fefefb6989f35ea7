package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CriteriaPreset is a named, stored criteria configuration
type CriteriaPreset struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Criteria    json.RawMessage `json:"criteria" db:"criteria"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ParseCriteria decodes the stored criteria document
func (p *CriteriaPreset) ParseCriteria() (Criteria, error) {
	var criteria Criteria
	if err := json.Unmarshal(p.Criteria, &criteria); err != nil {
		return Criteria{}, fmt.Errorf("failed to parse preset criteria: %w", err)
	}
	return criteria, nil
}

// CreateCriteriaPresetRequest is the request to create a criteria preset
type CreateCriteriaPresetRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Criteria    Criteria `json:"criteria" validate:"required"`
	IsActive    bool     `json:"is_active"`
}

// UpdateCriteriaPresetRequest is the request to update a criteria preset
type UpdateCriteriaPresetRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Criteria    *Criteria `json:"criteria,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

// CriteriaPresetListResponse is the response for listing criteria presets
type CriteriaPresetListResponse struct {
	Items      []CriteriaPreset `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}
