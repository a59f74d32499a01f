package models

type Reputation struct {
	Name    string `json:"name" db:"name"`
	Score   int    `json:"score" db:"nice_meter"`
	Updates int    `json:"updates" db:"updates"`
}

type Standing string

const (
	StandingUnknown Standing = "unknown"
	StandingNice    Standing = "nice"
	StandingNaughty Standing = "naughty"
)

// StandingForScore maps a cumulative score to its side of the list. Zero
// counts as naughty.
func StandingForScore(score int) Standing {
	if score > 0 {
		return StandingNice
	}
	return StandingNaughty
}

type StandingResponse struct {
	Name       string      `json:"name"`
	Standing   Standing    `json:"standing"`
	Reputation *Reputation `json:"reputation,omitempty"`
}

type DeedResult struct {
	Name       string      `json:"name"`
	Deed       string      `json:"deed"`
	DeedScore  int         `json:"deed_score"`
	Reputation *Reputation `json:"reputation"`
}

type Leaderboard struct {
	Nice    []*Reputation `json:"nice"`
	Naughty []*Reputation `json:"naughty"`
}

type ReputationMatch struct {
	Reputation
	Distance int `json:"distance"`
}
