package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
)

const BoardSize = 9

var (
	ErrUnknownStatus = errors.New("unknown game status")
	ErrUnknownReason = errors.New("unknown reject reason")
)

// Line is a triple of board positions that wins when one player owns all three.
type Line [3]int

// WinLines are checked in this order: rows, columns, diagonals.
var WinLines = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Cell

// Count returns the number of occupied cells.
func (that Board) Count() int {
	count := 0
	for _, cell := range that {
		if cell != CellEmpty {
			count++
		}
	}
	return count
}

// WinningLine returns the first line fully owned by a single player.
func (that Board) WinningLine() (Line, bool) {
	for _, line := range WinLines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != CellEmpty && a == b && b == c {
			return line, true
		}
	}
	return Line{}, false
}

func (that Board) String() string {
	var sb strings.Builder
	for i, cell := range that {
		mark := cell.String()
		if mark == "" {
			mark = "-"
		}
		sb.WriteString(mark)

		switch {
		case i == BoardSize-1:
		case i%3 == 2:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

type Status uint8

const (
	StatusInProgress Status = iota
	StatusWon
	StatusDrawn
)

func (that Status) String() string {
	switch that {
	case StatusInProgress:
		return "in_progress"
	case StatusWon:
		return "won"
	case StatusDrawn:
		return "drawn"
	default:
		return "unknown"
	}
}

func (that Status) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{StatusInProgress, StatusWon, StatusDrawn} {
		if status.String() == string(text) {
			*that = status
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
}

// Phase is where the current round stands. Winner is set only for StatusWon.
type Phase struct {
	Status Status
	Winner Player
}

func InProgress() Phase {
	return Phase{Status: StatusInProgress}
}

func Won(player Player) Phase {
	return Phase{Status: StatusWon, Winner: player}
}

func Drawn() Phase {
	return Phase{Status: StatusDrawn}
}

func (that Phase) IsOver() bool {
	return that.Status != StatusInProgress
}

func (that Phase) String() string {
	if that.Status == StatusWon {
		return fmt.Sprintf("won(%s)", that.Winner)
	}
	return that.Status.String()
}

// RejectReason tells why a move was not applied.
type RejectReason uint8

const (
	ReasonNone RejectReason = iota
	ReasonInvalidPosition
	ReasonCellOccupied
	ReasonGameAlreadyOver
)

func (that RejectReason) String() string {
	switch that {
	case ReasonInvalidPosition:
		return "invalid_position"
	case ReasonCellOccupied:
		return "cell_occupied"
	case ReasonGameAlreadyOver:
		return "game_already_over"
	default:
		return ""
	}
}

func (that RejectReason) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *RejectReason) UnmarshalText(text []byte) error {
	for _, reason := range []RejectReason{ReasonNone, ReasonInvalidPosition, ReasonCellOccupied, ReasonGameAlreadyOver} {
		if reason.String() == string(text) {
			*that = reason
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownReason, text)
}

// MoveResult is the answer to a single ApplyMove call.
type MoveResult struct {
	Accepted bool
	Reason   RejectReason
	Position int
	// Mover is the player who placed the mark; zero when rejected.
	Mover Player
	Phase Phase
}

// Err maps a rejection to its sentinel error, nil for an accepted move.
func (that MoveResult) Err() error {
	switch that.Reason {
	case ReasonInvalidPosition:
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, that.Position)
	case ReasonCellOccupied:
		return fmt.Errorf("%w: %d", apperror.ErrCellOccupied, that.Position)
	case ReasonGameAlreadyOver:
		return apperror.ErrGameAlreadyOver
	default:
		return nil
	}
}

// GameState is the rules engine of a single session. It is not safe for
// concurrent use; callers serialize access per session.
type GameState struct {
	board          Board
	activePlayer   Player
	startingPlayer Player
	moveCount      int
	phase          Phase
}

func NewGameState(startingPlayer Player) (*GameState, error) {
	if !startingPlayer.Valid() {
		return nil, fmt.Errorf("%w: starting player %d", apperror.ErrUnknownPlayer, uint8(startingPlayer))
	}

	game := &GameState{startingPlayer: startingPlayer}
	game.reset()

	return game, nil
}

// ApplyMove places the active player's mark at position. A rejected move
// leaves the state untouched.
func (that *GameState) ApplyMove(position int) MoveResult {
	if result, ok := that.validateMove(position); !ok {
		return result
	}

	mover := that.activePlayer
	that.board[position] = mover.Cell()
	that.moveCount++
	that.phase = that.evaluateOutcome()

	if !that.phase.IsOver() {
		that.activePlayer = mover.Opponent()
	}

	return MoveResult{
		Accepted: true,
		Position: position,
		Mover:    mover,
		Phase:    that.phase,
	}
}

func (that *GameState) validateMove(position int) (MoveResult, bool) {
	rejected := MoveResult{Position: position, Phase: that.phase}

	switch {
	case that.phase.IsOver():
		rejected.Reason = ReasonGameAlreadyOver
	case position < 0 || position >= BoardSize:
		rejected.Reason = ReasonInvalidPosition
	case that.board[position] != CellEmpty:
		rejected.Reason = ReasonCellOccupied
	default:
		return MoveResult{}, true
	}

	return rejected, false
}

// evaluateOutcome runs after every accepted move, before the turn flips, so
// a completed line always belongs to the active player.
func (that *GameState) evaluateOutcome() Phase {
	if _, ok := that.board.WinningLine(); ok {
		return Won(that.activePlayer)
	}

	if that.moveCount == BoardSize {
		return Drawn()
	}

	return InProgress()
}

// StartNewRound clears the board. A won round hands the first move of the
// next round to its winner; a draw keeps the previous starting player.
func (that *GameState) StartNewRound() {
	if that.phase.Status == StatusWon {
		that.startingPlayer = that.phase.Winner
	}

	that.reset()
}

func (that *GameState) reset() {
	that.board = Board{}
	that.moveCount = 0
	that.phase = InProgress()
	that.activePlayer = that.startingPlayer
}

func (that *GameState) ActivePlayer() Player {
	return that.activePlayer
}

func (that *GameState) StartingPlayer() Player {
	return that.startingPlayer
}

// Board returns a copy of the grid.
func (that *GameState) Board() Board {
	return that.board
}

func (that *GameState) MoveCount() int {
	return that.moveCount
}

func (that *GameState) Phase() Phase {
	return that.phase
}

// WinningLine is only meaningful once the round is won.
func (that *GameState) WinningLine() (Line, bool) {
	if that.phase.Status != StatusWon {
		return Line{}, false
	}
	return that.board.WinningLine()
}

// GameView is the serializable snapshot of a GameState.
type GameView struct {
	Board          Board   `json:"board"`
	ActivePlayer   Player  `json:"active_player"`
	StartingPlayer Player  `json:"starting_player"`
	MoveCount      int     `json:"move_count"`
	Status         Status  `json:"status"`
	Winner         *Player `json:"winner,omitempty"`
	WinningLine    *Line   `json:"winning_line,omitempty"`
}

func (that *GameState) View() GameView {
	view := GameView{
		Board:          that.board,
		ActivePlayer:   that.activePlayer,
		StartingPlayer: that.startingPlayer,
		MoveCount:      that.moveCount,
		Status:         that.phase.Status,
	}

	if that.phase.Status == StatusWon {
		winner := that.phase.Winner
		view.Winner = &winner
	}

	if line, ok := that.WinningLine(); ok {
		view.WinningLine = &line
	}

	return view
}
