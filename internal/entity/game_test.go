package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, startingPlayer Player) *GameState {
	t.Helper()

	game, err := NewGameState(startingPlayer)
	require.NoError(t, err)

	return game
}

func playMoves(t *testing.T, game *GameState, positions ...int) {
	t.Helper()

	for i, position := range positions {
		result := game.ApplyMove(position)
		require.Truef(t, result.Accepted, "move %d at %d rejected: %s", i, position, result.Reason)
	}
}

func TestNewGameState(t *testing.T) {
	t.Run("Starts an empty round with the configured player", func(t *testing.T) {
		// When: a game is created with O moving first
		game := newGame(t, PlayerO)

		// Then: the board is empty and O is active
		assert.Equal(t, Board{}, game.Board())
		assert.Equal(t, PlayerO, game.ActivePlayer())
		assert.Equal(t, PlayerO, game.StartingPlayer())
		assert.Equal(t, 0, game.MoveCount())
		assert.Equal(t, InProgress(), game.Phase())
	})

	t.Run("Rejects an unknown starting player", func(t *testing.T) {
		// When: a game is created with the zero player
		game, err := NewGameState(Player(0))

		// Then: ErrUnknownPlayer is returned
		require.ErrorIs(t, err, apperror.ErrUnknownPlayer)
		assert.Nil(t, game)
	})
}

func TestGameState_ApplyMove(t *testing.T) {
	t.Run("Accepts a move on every empty cell of a fresh board", func(t *testing.T) {
		for position := 0; position < BoardSize; position++ {
			// Given: a fresh game
			game := newGame(t, PlayerX)

			// When: X plays the position
			result := game.ApplyMove(position)

			// Then: the mark is placed and the turn passes to O
			require.True(t, result.Accepted)
			assert.Equal(t, PlayerX, result.Mover)
			assert.Equal(t, position, result.Position)
			assert.Equal(t, CellX, game.Board()[position])
			assert.Equal(t, PlayerO, game.ActivePlayer())
			assert.Equal(t, 1, game.MoveCount())
		}
	})

	t.Run("Keeps moveCount equal to the occupied cells", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t, PlayerX)

		// When: a full drawn round is played, including rejected attempts
		for _, position := range []int{0, 0, 1, 9, 2, 4, -1, 3, 5, 7, 6, 8, 8} {
			game.ApplyMove(position)

			// Then: the invariant holds after every call
			assert.Equal(t, game.Board().Count(), game.MoveCount())
		}
	})

	t.Run("Alternates the active player on consecutive moves", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t, PlayerX)
		expected := PlayerX

		// When: moves without a winner are played
		for _, position := range []int{4, 0, 8, 2} {
			result := game.ApplyMove(position)

			// Then: movers strictly alternate
			require.True(t, result.Accepted)
			assert.Equal(t, expected, result.Mover)
			expected = expected.Opponent()
			assert.Equal(t, expected, game.ActivePlayer())
		}
	})

	t.Run("Rejects an occupied cell without changing state", func(t *testing.T) {
		// Given: X has played the centre
		game := newGame(t, PlayerX)
		playMoves(t, game, 4)
		before := *game

		// When: O tries the same cell
		result := game.ApplyMove(4)

		// Then: the move is rejected as occupied and nothing changed
		assert.False(t, result.Accepted)
		assert.Equal(t, ReasonCellOccupied, result.Reason)
		assert.Zero(t, result.Mover)
		require.ErrorIs(t, result.Err(), apperror.ErrCellOccupied)
		assert.Equal(t, before, *game)
	})

	t.Run("Rejects out of range positions", func(t *testing.T) {
		for _, position := range []int{-1, 9, 20} {
			// Given: a fresh game
			game := newGame(t, PlayerX)
			before := *game

			// When: an invalid position is played
			result := game.ApplyMove(position)

			// Then: the move is rejected as out of range
			assert.Equal(t, ReasonInvalidPosition, result.Reason)
			require.ErrorIs(t, result.Err(), apperror.ErrInvalidPosition)
			assert.Equal(t, before, *game)
		}
	})

	t.Run("Rejects every move once the round is over", func(t *testing.T) {
		// Given: X has won the top row
		game := newGame(t, PlayerX)
		playMoves(t, game, 0, 3, 1, 4, 2)
		before := *game

		for position := -1; position <= BoardSize; position++ {
			// When: any position is played
			result := game.ApplyMove(position)

			// Then: the game-over reason wins over every other check
			assert.Equal(t, ReasonGameAlreadyOver, result.Reason)
			require.ErrorIs(t, result.Err(), apperror.ErrGameAlreadyOver)
			assert.Equal(t, before, *game)
		}
	})

	t.Run("Accepted move has no error", func(t *testing.T) {
		game := newGame(t, PlayerX)

		result := game.ApplyMove(0)

		assert.NoError(t, result.Err())
		assert.Equal(t, ReasonNone, result.Reason)
	})
}

func TestGameState_Outcome(t *testing.T) {
	t.Run("X wins the top row", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t, PlayerX)

		// When: X:0, O:3, X:1, O:4, X:2 are played
		playMoves(t, game, 0, 3, 1, 4)
		result := game.ApplyMove(2)

		// Then: X has won and keeps the turn marker
		require.True(t, result.Accepted)
		assert.Equal(t, Won(PlayerX), result.Phase)
		assert.Equal(t, Won(PlayerX), game.Phase())
		assert.Equal(t, PlayerX, game.ActivePlayer())

		line, ok := game.WinningLine()
		require.True(t, ok)
		assert.Equal(t, Line{0, 1, 2}, line)
	})

	t.Run("Every line wins", func(t *testing.T) {
		for _, line := range WinLines {
			// Given: a board where X owns the line
			game := newGame(t, PlayerX)
			for _, position := range line {
				game.board[position] = CellX
			}
			game.moveCount = 3

			// When: the outcome is evaluated
			phase := game.evaluateOutcome()

			// Then: the active player wins
			assert.Equal(t, Won(PlayerX), phase, "line %v", line)
		}
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t, PlayerX)

		// When: X:0, O:1, X:2, O:4, X:3, O:5, X:7, O:6, X:8 are played
		playMoves(t, game, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the round is drawn at nine moves
		assert.Equal(t, Drawn(), game.Phase())
		assert.Equal(t, BoardSize, game.MoveCount())
		_, ok := game.WinningLine()
		assert.False(t, ok)
	})

	t.Run("Round stays in progress without a line", func(t *testing.T) {
		game := newGame(t, PlayerX)

		playMoves(t, game, 0, 4, 8)

		assert.Equal(t, InProgress(), game.Phase())
		assert.Equal(t, PlayerO, game.ActivePlayer())
	})
}

func TestGameState_StartNewRound(t *testing.T) {
	t.Run("Winner of the round starts the next one", func(t *testing.T) {
		// Given: O wins the middle row in a round X started
		game := newGame(t, PlayerX)
		playMoves(t, game, 0, 3, 1, 4, 8, 5)
		require.Equal(t, Won(PlayerO), game.Phase())

		// When: a new round starts
		game.StartNewRound()

		// Then: O moves first on an empty board
		assert.Equal(t, PlayerO, game.ActivePlayer())
		assert.Equal(t, PlayerO, game.StartingPlayer())
		assert.Equal(t, Board{}, game.Board())
		assert.Equal(t, 0, game.MoveCount())
		assert.Equal(t, InProgress(), game.Phase())
	})

	t.Run("Draw keeps the previous starting player", func(t *testing.T) {
		// Given: a drawn round started by O
		game := newGame(t, PlayerO)
		playMoves(t, game, 0, 1, 2, 4, 3, 5, 7, 6, 8)
		require.Equal(t, Drawn(), game.Phase())

		// When: a new round starts
		game.StartNewRound()

		// Then: O still moves first
		assert.Equal(t, PlayerO, game.ActivePlayer())
		assert.Equal(t, PlayerO, game.StartingPlayer())
	})

	t.Run("Abandoning a round keeps the starting player", func(t *testing.T) {
		// Given: a round in progress where O is to move
		game := newGame(t, PlayerX)
		playMoves(t, game, 4)

		// When: a new round starts early
		game.StartNewRound()

		// Then: X starts again
		assert.Equal(t, PlayerX, game.ActivePlayer())
		assert.Equal(t, Board{}, game.Board())
	})

	t.Run("Moves are accepted again after a reset", func(t *testing.T) {
		game := newGame(t, PlayerX)
		playMoves(t, game, 0, 3, 1, 4, 2)

		game.StartNewRound()
		result := game.ApplyMove(0)

		assert.True(t, result.Accepted)
		assert.Equal(t, PlayerX, result.Mover)
	})
}

func TestGameState_Queries(t *testing.T) {
	t.Run("Repeated queries return identical results", func(t *testing.T) {
		// Given: a game with two moves
		game := newGame(t, PlayerX)
		playMoves(t, game, 4, 0)

		// When: queries are repeated
		firstBoard, firstPlayer := game.Board(), game.ActivePlayer()
		secondBoard, secondPlayer := game.Board(), game.ActivePlayer()

		// Then: the answers match
		assert.Equal(t, firstBoard, secondBoard)
		assert.Equal(t, firstPlayer, secondPlayer)
	})

	t.Run("Board is a copy", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t, PlayerX)

		// When: the returned board is written to
		board := game.Board()
		board[0] = CellO

		// Then: the game is unaffected
		assert.Equal(t, CellEmpty, game.Board()[0])
		assert.Equal(t, 0, game.MoveCount())
	})
}

func TestBoard_String(t *testing.T) {
	board := Board{CellX, CellEmpty, CellEmpty, CellEmpty, CellEmpty, CellEmpty, CellEmpty, CellEmpty, CellO}

	assert.Equal(t, "X - -\n- - -\n- - O", board.String())
}

func TestGameState_View(t *testing.T) {
	t.Run("Serializes an ongoing game", func(t *testing.T) {
		// Given: X has played the corner
		game := newGame(t, PlayerX)
		playMoves(t, game, 0)

		// When: the view is marshaled
		data, err := json.Marshal(game.View())
		require.NoError(t, err)

		// Then: cells are symbols and no winner is reported
		assert.JSONEq(t, `{
			"board": ["X", "", "", "", "", "", "", "", ""],
			"active_player": "O",
			"starting_player": "X",
			"move_count": 1,
			"status": "in_progress"
		}`, string(data))
	})

	t.Run("Reports the winner and the line", func(t *testing.T) {
		// Given: X has won the top row
		game := newGame(t, PlayerX)
		playMoves(t, game, 0, 3, 1, 4, 2)

		// When: the view is taken
		view := game.View()

		// Then: winner and line are set
		require.NotNil(t, view.Winner)
		assert.Equal(t, PlayerX, *view.Winner)
		require.NotNil(t, view.WinningLine)
		assert.Equal(t, Line{0, 1, 2}, *view.WinningLine)
		assert.Equal(t, StatusWon, view.Status)
	})
}

func TestStatus_UnmarshalText(t *testing.T) {
	var status Status

	require.NoError(t, status.UnmarshalText([]byte("drawn")))
	assert.Equal(t, StatusDrawn, status)
	require.ErrorIs(t, status.UnmarshalText([]byte("paused")), ErrUnknownStatus)
}

func TestRejectReason_UnmarshalText(t *testing.T) {
	var reason RejectReason

	require.NoError(t, reason.UnmarshalText([]byte("cell_occupied")))
	assert.Equal(t, ReasonCellOccupied, reason)
	require.ErrorIs(t, reason.UnmarshalText([]byte("tired")), ErrUnknownReason)
}
