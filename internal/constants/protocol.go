package constants

import "time"

// Graal Protocol Constants
//
// Wire-level and batching constants of the game protocol engine.

// Bundle Framing Constants
const (
	// BundleHeaderSize is the bundle length header size (2 bytes, big-endian uint16)
	BundleHeaderSize = 2

	// MaxBundleSize is the largest payload a 2-byte header can describe
	MaxBundleSize = 0xFFFF

	// DefaultMaxInboundBundle is the sanity ceiling for inbound bundle lengths.
	// Anything above is rejected before the payload is allocated.
	DefaultMaxInboundBundle = 0xF800

	// MaxDecompressedSize caps inflated bundles (decompression bomb guard)
	MaxDecompressedSize = 1 << 20

	// MessageSeparator terminates every message except raw data
	MessageSeparator = '\n'
)

// Outbound Queue Constants
const (
	// FlushByteThreshold triggers a flush once queued normal bytes reach 48 KiB
	FlushByteThreshold = 0xC000

	// FlushCycleThreshold triggers a flush after this many enqueues without a write
	FlushCycleThreshold = 4

	// MaxBatchSize is the hard cap of one outgoing batch (60 KiB).
	// A single message above it is sent alone.
	MaxBatchSize = 0xF000

	// FileStarvationBytes forces a file message after this many normal bytes
	FileStarvationBytes = 0x8000

	// FileTopUpThreshold allows one more file message while the batch is below 16 KiB
	FileTopUpThreshold = 0x4000

	// MaxEmptyFlushes caps the consecutive empty flush counter
	MaxEmptyFlushes = 5
)

// Connection Timing Constants
const (
	// DefaultFlushInterval is the period of the flush timer
	DefaultFlushInterval = 50 * time.Millisecond

	// DefaultIdleTimeout disconnects a connection without any activity
	DefaultIdleTimeout = 60 * time.Second

	// DefaultTimeoutCheckInterval is the period of the idle check
	DefaultTimeoutCheckInterval = 10 * time.Second

	// DefaultWriteTimeout bounds a single socket write
	DefaultWriteTimeout = 5 * time.Second

	// DefaultReadBufSize is the initial capacity of the per-connection read buffer
	DefaultReadBufSize = 8192
)

// Login Constants
const (
	// LoginVersionSize is the fixed width of the client version string
	LoginVersionSize = 8

	// SignatureValue is the payload of the post-login signature message
	SignatureValue = 73

	// BoardTiles is the number of tiles of one level board (64×64)
	BoardTiles = 64 * 64

	// BoardSize is the raw board size in bytes (2 bytes per tile)
	BoardSize = BoardTiles * 2
)
