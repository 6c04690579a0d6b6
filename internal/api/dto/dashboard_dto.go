package dto

import "github.com/spec-kit/ticketflex/internal/service"

// StatsResponse holds ticket counts by status.
type StatsResponse struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
}

// DashboardResponse is the dashboard payload.
type DashboardResponse struct {
	Welcome string        `json:"welcome"`
	Email   string        `json:"email"`
	Stats   StatsResponse `json:"stats"`
}

// NewDashboardResponse maps an overview.
func NewDashboardResponse(o *service.Overview) DashboardResponse {
	return DashboardResponse{
		Welcome: o.FullName,
		Email:   o.Email,
		Stats: StatsResponse{
			Open:       o.Stats.Open,
			InProgress: o.Stats.InProgress,
			Closed:     o.Stats.Closed,
			Total:      o.Stats.Total,
		},
	}
}
