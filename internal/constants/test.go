package constants

import "time"

// Test Constants
//
// IMPORTANT: These constants are for testing only. DO NOT use in production code.

// Timing Constants
const (
	// TestIOTimeout bounds reads and writes on pipe connections in tests
	TestIOTimeout = 2 * time.Second

	// TestFlushInterval is a fast flush timer for connection tests
	TestFlushInterval = 5 * time.Millisecond
)

// Fixture Constants
const (
	// TestEncryptionKey is the login key used by test clients
	TestEncryptionKey = 0x5A

	// TestClientVersion is an 8-byte client version string
	TestClientVersion = "GNW03014"

	// TestAccountName is the default fixture account
	TestAccountName = "tester"

	// TestAccountPassword is the password of the fixture account
	TestAccountPassword = "secret"

	// TestLevelName is the start level of the fixture account
	TestLevelName = "onlinestartlocal.nw"
)
