package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/tictactoe-rounds/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayer(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Player
	}{
		{name: "upper X", value: "X", expected: PlayerX},
		{name: "lower o", value: "o", expected: PlayerO},
		{name: "padded", value: " x ", expected: PlayerX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, err := ParsePlayer(tt.value)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, player)
		})
	}

	t.Run("Unknown value", func(t *testing.T) {
		_, err := ParsePlayer("D")

		require.ErrorIs(t, err, apperror.ErrUnknownPlayer)
	})
}

func TestPlayer_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
}

func TestPlayer_JSON(t *testing.T) {
	t.Run("Round trips through text", func(t *testing.T) {
		var decoded struct {
			Player Player `json:"player"`
		}

		require.NoError(t, json.Unmarshal([]byte(`{"player":"O"}`), &decoded))
		assert.Equal(t, PlayerO, decoded.Player)
	})

	t.Run("Zero player cannot be marshaled", func(t *testing.T) {
		_, err := json.Marshal(Player(0))

		require.Error(t, err)
	})
}

func TestCell_Owner(t *testing.T) {
	owner, ok := CellX.Owner()
	assert.True(t, ok)
	assert.Equal(t, PlayerX, owner)

	owner, ok = CellO.Owner()
	assert.True(t, ok)
	assert.Equal(t, PlayerO, owner)

	_, ok = CellEmpty.Owner()
	assert.False(t, ok)

	assert.Equal(t, CellX, PlayerX.Cell())
	assert.Equal(t, CellO, PlayerO.Cell())
}
