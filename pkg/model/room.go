package model

// Room is the read model for the external Room Catalog. The engine fetches it
// fresh per mutating request and never persists or mutates it.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NightlyRate int64  `json:"nightly_rate"`
	Capacity    int    `json:"capacity"`
}
