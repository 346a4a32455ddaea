package entity

import "time"

// View is the per-recipient projection of a session. It never carries
// connection identities.
type View struct {
	Board          Board         `json:"board"`
	CurrentPlayer  Symbol        `json:"currentPlayer"`
	GameActive     bool          `json:"gameActive"`
	Outcome        OutcomeStatus `json:"outcome"`
	Winner         Symbol        `json:"winner,omitempty"`
	IsDraw         bool          `json:"isDraw"`
	MySymbol       Symbol        `json:"mySymbol"`
	OpponentSymbol Symbol        `json:"opponentSymbol,omitempty"`
	YourTurn       bool          `json:"yourTurn"`
}

// SessionSummary is a listing row for the sessions endpoint.
type SessionSummary struct {
	ID            string `json:"sessionId"`
	PlayerCount   int    `json:"playerCount"`
	GameActive    bool   `json:"gameActive"`
	CurrentPlayer Symbol `json:"currentPlayer"`
}

// MatchResult is a finished match as kept in the history store.
type MatchResult struct {
	SessionID  string        `json:"sessionId"`
	Outcome    OutcomeStatus `json:"outcome"`
	Winner     Symbol        `json:"winner,omitempty"`
	Board      Board         `json:"board"`
	Moves      int           `json:"moves"`
	FinishedAt time.Time     `json:"finishedAt"`
}
