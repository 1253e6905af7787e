package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
)

// Player is one of the two sides taking turns. The zero value is not a player.
type Player uint8

const (
	PlayerX Player = iota + 1
	PlayerO
)

// ParsePlayer accepts "X" or "O" in any case.
func ParsePlayer(value string) (Player, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, value)
	}
}

func (that Player) Valid() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other side.
func (that Player) Opponent() Player {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Cell returns the mark this player leaves on the board.
func (that Player) Cell() Cell {
	switch that {
	case PlayerX:
		return CellX
	case PlayerO:
		return CellO
	default:
		return CellEmpty
	}
}

func (that Player) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

func (that Player) MarshalText() ([]byte, error) {
	if !that.Valid() {
		return nil, fmt.Errorf("%w: %d", apperror.ErrUnknownPlayer, uint8(that))
	}
	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	player, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*that = player
	return nil
}

// Cell is the occupancy of one board position.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellX
	CellO
)

// Owner reports which player holds the cell, false when it is empty.
func (that Cell) Owner() (Player, bool) {
	switch that {
	case CellX:
		return PlayerX, true
	case CellO:
		return PlayerO, true
	default:
		return 0, false
	}
}

func (that Cell) String() string {
	switch that {
	case CellX:
		return "X"
	case CellO:
		return "O"
	default:
		return ""
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*that = CellEmpty
		return nil
	}

	player, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*that = player.Cell()
	return nil
}
