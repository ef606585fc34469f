package resources

import "time"

type CreateResourceRequest struct {
	Name               string    `json:"name" binding:"required,min=3,max=255"`
	Venue              string    `json:"venue" binding:"required,min=2,max=255"`
	Description        string    `json:"description" binding:"max=2000"`
	StartsAt           time.Time `json:"starts_at" binding:"required"`
	TotalCapacity      int       `json:"total_capacity" binding:"required,min=1,max=1000000"`
	AllowsReservations *bool     `json:"allows_reservations"`
	MaxGroupSize       int       `json:"max_group_size" binding:"omitempty,min=0"`
	InitialBlocked     int       `json:"initial_blocked" binding:"omitempty,min=0,ltefield=TotalCapacity"`
}

type ResourceListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Venue    string `form:"venue"`
	Status   string `form:"status" binding:"omitempty,oneof=scheduled cancelled completed"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}
