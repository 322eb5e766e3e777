package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"
)

// testSequence starts from the clock so parallel runs against one database do not collide
var testSequence = uint64(time.Now().UnixNano() % 1000000)

// NextSequence returns next unique sequence number
func NextSequence() uint64 {
	return atomic.AddUint64(&testSequence, 1)
}

// UniqueTelegramID generates a unique telegram ID in [100000000, 999999999]
func UniqueTelegramID() int64 {
	return 100000000 + int64(NextSequence()%900000000)
}

// UniqueUsername generates a unique username
func UniqueUsername() string {
	return fmt.Sprintf("user_%d", NextSequence())
}

// UniqueTicker generates a ticker-shaped symbol that no real listing uses
func UniqueTicker() string {
	return fmt.Sprintf("ZZ%d", NextSequence()%100000)
}
