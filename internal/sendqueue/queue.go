// Package sendqueue batches serialized outbound messages into bundles.
//
// Handlers never write to the socket. They add messages here and the connection
// decides when to call Next, which composes at most one bundle worth of messages.
// Two lists are kept: normal traffic, which is batched freely, and file (bulk
// transfer) messages, which keep their relative order and get special priority.
package sendqueue

import (
	"github.com/udisondev/gserver/internal/constants"
)

// Queue is the per-connection outbound queue. It is not safe for concurrent use;
// the owning connection serializes access with its send lock.
type Queue struct {
	normal      [][]byte
	files       [][]byte
	normalBytes int

	// enqueues since the last bundle was actually produced
	cycles int
	// normal bytes sent since a file message was last included
	bytesSinceFile int
	// consecutive Next calls that produced nothing, capped
	emptyFlushes int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Add appends an encoded message. Bulk-transfer messages go to the file list.
func (q *Queue) Add(msg []byte, bulk bool) {
	if bulk {
		q.files = append(q.files, msg)
	} else {
		q.normal = append(q.normal, msg)
		q.normalBytes += len(msg)
	}
	q.cycles++
}

// ShouldFlush reports whether the byte or cycle threshold has been reached.
func (q *Queue) ShouldFlush() bool {
	return q.normalBytes >= constants.FlushByteThreshold || q.cycles >= constants.FlushCycleThreshold
}

// Pending reports whether any message is waiting.
func (q *Queue) Pending() bool {
	return len(q.normal) > 0 || len(q.files) > 0
}

// Next composes the next batch. It returns nil when there is nothing to send.
//
// Order matters for fairness between bulk and regular traffic:
//  1. a normal message above MaxBatchSize goes out alone;
//  2. a pending file message leads an empty batch (see fileDue);
//  3. normal messages are drained while the batch stays within FlushByteThreshold
//     (an empty batch always takes the head message);
//  4. small batches are topped up with one more file message.
func (q *Queue) Next() []byte {
	var batch []byte
	var drained int

	if len(q.normal) > 0 && len(q.normal[0]) > constants.MaxBatchSize {
		batch = q.popNormal()
		drained += len(batch)
	} else if len(q.normal) == 0 && len(q.files) > 0 && len(q.files[0]) > constants.MaxBatchSize {
		batch = q.popFile()
		q.bytesSinceFile = 0
	}

	if len(batch) == 0 && q.fileDue() && len(q.files) > 0 && len(q.files[0]) <= constants.MaxBatchSize {
		batch = append(batch, q.popFile()...)
		q.bytesSinceFile = 0
	}

	for len(q.normal) > 0 && len(batch) < constants.FlushByteThreshold {
		next := q.normal[0]
		if len(batch) > 0 && len(batch)+len(next) > constants.FlushByteThreshold {
			break
		}
		if len(batch)+len(next) > constants.MaxBatchSize {
			break
		}
		batch = append(batch, q.popNormal()...)
		drained += len(next)
	}
	q.bytesSinceFile += drained

	if len(batch) < constants.FileTopUpThreshold && len(q.files) > 0 &&
		len(batch)+len(q.files[0]) <= constants.MaxBatchSize {
		batch = append(batch, q.popFile()...)
		q.bytesSinceFile = 0
	}

	if len(q.files) == 0 {
		q.bytesSinceFile = 0
	}

	if len(batch) == 0 {
		if q.emptyFlushes < constants.MaxEmptyFlushes {
			q.emptyFlushes++
		}
		return nil
	}

	q.emptyFlushes = 0
	q.cycles = 0
	return batch
}

// fileDue reports whether a file message may lead an empty batch: normal traffic
// has starved the file list, or a file message is simply waiting.
func (q *Queue) fileDue() bool {
	return q.bytesSinceFile > constants.FileStarvationBytes || len(q.files) > 0
}

func (q *Queue) popNormal() []byte {
	msg := q.normal[0]
	q.normal[0] = nil
	q.normal = q.normal[1:]
	q.normalBytes -= len(msg)
	return msg
}

func (q *Queue) popFile() []byte {
	msg := q.files[0]
	q.files[0] = nil
	q.files = q.files[1:]
	return msg
}

// NormalLen returns the number of queued normal messages.
func (q *Queue) NormalLen() int {
	return len(q.normal)
}

// FileLen returns the number of queued file messages.
func (q *Queue) FileLen() int {
	return len(q.files)
}

// NormalBytes returns the byte count of the normal list.
func (q *Queue) NormalBytes() int {
	return q.normalBytes
}

// Cycles returns the number of enqueues since the last produced batch.
func (q *Queue) Cycles() int {
	return q.cycles
}

// BytesSinceFile returns the normal bytes sent since the last file message.
func (q *Queue) BytesSinceFile() int {
	return q.bytesSinceFile
}

// EmptyFlushes returns the number of consecutive empty Next calls (at most MaxEmptyFlushes).
func (q *Queue) EmptyFlushes() int {
	return q.emptyFlushes
}
