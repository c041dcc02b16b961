package dto

import (
	"github.com/hugh/rally/internal/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// Response is the body of a successful write or lookup.
type Response struct {
	Message string      `json:"message,omitempty"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

func NewPaginatedResponse(data interface{}, total int64, p PaginationParams) PaginatedResponse {
	totalPages := int(total) / p.PerPage
	if int(total)%p.PerPage > 0 {
		totalPages++
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
	}
}

// DefaultPerPage is the page size of question and answer listings.
const DefaultPerPage = 20

type PaginationParams struct {
	Page    int
	PerPage int
}

func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}
