package jbod

import "errors"

// State errors are returned synchronously, before any I/O, when an operation
// is not valid in the current state.
var (
	// ErrMounted is returned when mounting an already mounted volume.
	ErrMounted = errors.New("jbod: already mounted")

	// ErrNotMounted is returned by unmount and by the data path while the
	// volume is unmounted.
	ErrNotMounted = errors.New("jbod: not mounted")

	// ErrCacheExists is returned when creating a cache twice.
	ErrCacheExists = errors.New("jbod: cache already exists")

	// ErrNoCache is returned when destroying a cache that doesn't exist.
	ErrNoCache = errors.New("jbod: no cache")

	// ErrClosed is returned when a function attempts to use a device that
	// has been closed.
	ErrClosed = errors.New("jbod: device is closed")

	ErrNotConnected = errors.New("jbod: not connected")
	ErrConnected    = errors.New("jbod: already connected")
)

// Range errors are returned synchronously, before any I/O, when an argument is
// outside of valid bounds.
var (
	ErrOutOfRange = errors.New("jbod: address out of range")

	// ErrTooLong is returned for transfers longer than the maximum transfer
	// size.
	ErrTooLong = errors.New("jbod: transfer too long")

	ErrBadCapacity  = errors.New("jbod: cache capacity out of range")
	ErrBadBlockSize = errors.New("jbod: buffer is not one block long")
)

// Protocol errors are fatal to the call that hit them. Nothing retries.
var (
	// ErrShortPacket is returned when the stream ends in the middle of a
	// packet.
	ErrShortPacket = errors.New("jbod: short packet")

	ErrBadLength = errors.New("jbod: bad packet length")

	// ErrOpMismatch is returned when a response doesn't echo the opcode of
	// its request.
	ErrOpMismatch = errors.New("jbod: response opcode mismatch")

	// ErrStatus is returned when the device reports a failed operation.
	ErrStatus = errors.New("jbod: operation failed")
)

// ErrResource is returned when backing storage can't be allocated or
// opened.
var ErrResource = errors.New("jbod: resource unavailable")

func IsStateError(err error) bool {
	return errors.Is(err, ErrMounted) || errors.Is(err, ErrNotMounted) ||
		errors.Is(err, ErrCacheExists) || errors.Is(err, ErrNoCache) ||
		errors.Is(err, ErrNotConnected) || errors.Is(err, ErrConnected) ||
		errors.Is(err, ErrClosed)
}

func IsRangeError(err error) bool {
	return errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrTooLong) ||
		errors.Is(err, ErrBadCapacity) || errors.Is(err, ErrBadBlockSize)
}

func IsProtocolError(err error) bool {
	return errors.Is(err, ErrShortPacket) || errors.Is(err, ErrBadLength) ||
		errors.Is(err, ErrOpMismatch) || errors.Is(err, ErrStatus)
}
