package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateConnected, "CONNECTED"},
		{StateLoggingIn, "LOGGING_IN"},
		{StateAuthenticated, "AUTHENTICATED"},
		{StateDisconnecting, "DISCONNECTING"},
		{StateDisconnected, "DISCONNECTED"},
		{ConnectionState(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestConnectionState_CanTransition(t *testing.T) {
	assert.True(t, StateConnected.CanTransition(StateLoggingIn))
	assert.True(t, StateLoggingIn.CanTransition(StateAuthenticated))
	assert.True(t, StateLoggingIn.CanTransition(StateDisconnecting))
	assert.True(t, StateConnected.CanTransition(StateDisconnecting))
	assert.True(t, StateAuthenticated.CanTransition(StateDisconnecting))
	assert.True(t, StateDisconnecting.CanTransition(StateDisconnected))

	assert.False(t, StateConnected.CanTransition(StateAuthenticated))
	assert.False(t, StateAuthenticated.CanTransition(StateLoggingIn))
	assert.False(t, StateDisconnecting.CanTransition(StateDisconnecting))
	assert.False(t, StateConnected.CanTransition(StateDisconnected))
	assert.False(t, StateDisconnected.CanTransition(StateConnected))
}
