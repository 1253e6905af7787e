package entity

import (
	"strings"
	"time"
)

const BannerDraw = "DRAW"

// Names are the display names bound to each side. The rules engine never
// sees them; they only matter when a banner is rendered.
type Names struct {
	X string `json:"x"`
	O string `json:"o"`
}

// Of returns the display name of player, or its symbol when the name is blank.
func (that Names) Of(player Player) string {
	var name string
	switch player {
	case PlayerX:
		name = that.X
	case PlayerO:
		name = that.O
	}

	if strings.TrimSpace(name) == "" {
		return player.String()
	}
	return name
}

// Merge keeps the current name for every blank field of update.
func (that Names) Merge(update Names) Names {
	if strings.TrimSpace(update.X) != "" {
		that.X = strings.TrimSpace(update.X)
	}
	if strings.TrimSpace(update.O) != "" {
		that.O = strings.TrimSpace(update.O)
	}
	return that
}

// Score counts finished rounds within a session.
type Score struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

func (that *Score) Record(phase Phase) {
	switch {
	case phase.Status == StatusDrawn:
		that.Draws++
	case phase.Status == StatusWon && phase.Winner == PlayerX:
		that.X++
	case phase.Status == StatusWon && phase.Winner == PlayerO:
		that.O++
	}
}

// Session is one GameState played over many rounds by the same two names.
type Session struct {
	ID        string
	Names     Names
	Game      *GameState
	Score     Score
	Round     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(id string, names Names, startingPlayer Player, now time.Time) (*Session, error) {
	game, err := NewGameState(startingPlayer)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        id,
		Names:     names,
		Game:      game,
		Round:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Banner is the end-of-round text: DRAW, the winner's name, or empty while
// the round is still being played.
func (that *Session) Banner() string {
	phase := that.Game.Phase()

	switch phase.Status {
	case StatusDrawn:
		return BannerDraw
	case StatusWon:
		return that.Names.Of(phase.Winner)
	default:
		return ""
	}
}

type SessionView struct {
	ID        string    `json:"id"`
	Names     Names     `json:"names"`
	Round     int       `json:"round"`
	Score     Score     `json:"score"`
	Game      GameView  `json:"game"`
	Banner    string    `json:"banner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (that *Session) View() SessionView {
	return SessionView{
		ID:        that.ID,
		Names:     that.Names,
		Round:     that.Round,
		Score:     that.Score,
		Game:      that.Game.View(),
		Banner:    that.Banner(),
		CreatedAt: that.CreatedAt,
		UpdatedAt: that.UpdatedAt,
	}
}
