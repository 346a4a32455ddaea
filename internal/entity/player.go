package entity

// Player is the public part of a seat: who sits in it and which mark they play.
type Player struct {
	ID   string `json:"id"`
	Mark Symbol `json:"mark"`
}
