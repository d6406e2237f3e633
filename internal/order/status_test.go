package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("out for delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, st)

	for _, bad := range []string{"", "Placed", "shipped", "pending"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, ErrInvalidStatus, bad)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPlaced, StatusOutForDelivery, true},
		{StatusPlaced, StatusDelivered, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusOutForDelivery, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, true},

		{StatusPlaced, StatusPlaced, false},
		{StatusOutForDelivery, StatusPlaced, false},
		{StatusDelivered, StatusOutForDelivery, false},
		{StatusCancelled, StatusPlaced, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatus_TerminalAndClosed(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())

	assert.True(t, StatusDelivered.IsClosed())
	assert.True(t, StatusCancelled.IsClosed())
	assert.False(t, StatusPlaced.IsClosed())
	assert.False(t, StatusOutForDelivery.IsClosed())
}

func TestErrInvalidTransition_IsInvalidStatus(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidTransition, ErrInvalidStatus)
}
