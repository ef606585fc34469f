package capacity

type AmountRequest struct {
	Amount int `json:"amount" binding:"required,min=1"`
}

type SetBlockedRequest struct {
	Blocked *int `json:"blocked" binding:"required,min=0"`
}

type ReleaseRequest struct {
	PartySize int `json:"party_size" binding:"required,min=1"`
}

type UpdateSettingsRequest struct {
	AllowsReservations *bool `json:"allows_reservations"`
	MaxGroupSize       *int  `json:"max_group_size" binding:"omitempty,min=0"`
}

func (r UpdateSettingsRequest) ToUpdate() SettingsUpdate {
	return SettingsUpdate{
		AllowsReservations: r.AllowsReservations,
		MaxGroupSize:       r.MaxGroupSize,
	}
}
