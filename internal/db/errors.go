package db

import "errors"

// ErrKeyNotFound reports a cache miss: the response was never stored or
// its TTL ran out. It is not wrapped in *Error.
var ErrKeyNotFound = errors.New("cache key not found")

// Command names recorded in Error.Op.
const (
	OpPing = "PING"
	OpGet  = "GET"
	OpSet  = "SET"
	OpDel  = "DEL"
)

// Error is a failed cache command. Callers treat it as a bypass, not a miss.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "cache " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
