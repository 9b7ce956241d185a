package login

// ConnectionState represents the lifecycle of a game connection.
type ConnectionState int32

const (
	StateConnected     ConnectionState = iota // TCP accepted, waiting for the login bundle
	StateLoggingIn                            // login bundle received and being processed
	StateAuthenticated                        // account resolved, initial state sent
	StateDisconnecting                        // cleanup begun
	StateDisconnected                         // terminal
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateLoggingIn:
		return "LOGGING_IN"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s ConnectionState) CanTransition(next ConnectionState) bool {
	switch next {
	case StateLoggingIn:
		return s == StateConnected
	case StateAuthenticated:
		return s == StateLoggingIn
	case StateDisconnecting:
		return s < StateDisconnecting
	case StateDisconnected:
		return s == StateDisconnecting
	default:
		return false
	}
}
