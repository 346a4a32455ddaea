package entity

type OutcomeStatus string

const (
	StatusInProgress OutcomeStatus = "in_progress"
	StatusWon        OutcomeStatus = "won"
	StatusDrawn      OutcomeStatus = "drawn"
	StatusAbandoned  OutcomeStatus = "abandoned"
)

// Outcome classifies a match. Winner is set only for StatusWon.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Symbol        `json:"winner,omitempty"`
}

func InProgress() Outcome {
	return Outcome{Status: StatusInProgress}
}

func Won(winner Symbol) Outcome {
	return Outcome{Status: StatusWon, Winner: winner}
}

func Drawn() Outcome {
	return Outcome{Status: StatusDrawn}
}

func Abandoned() Outcome {
	return Outcome{Status: StatusAbandoned}
}

func (that Outcome) IsInProgress() bool {
	return that.Status == StatusInProgress
}

// IsFinished reports whether the match ended on the board (win or draw).
func (that Outcome) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDrawn
}
