package services

import (
	"math"
	"sync/atomic"
)

// maxChatID keeps a small safety margin before the counter wraps to
// zero. Id reuse after a wrap is theoretically possible but the counter
// space is effectively never exhausted; a known boundary behavior, not
// a bug to fix here.
const maxChatID = math.MaxInt64 - 2

// chatIDAllocator issues process-wide monotonically increasing chat ids
// starting at 1.
type chatIDAllocator struct {
	next atomic.Int64
}

func (a *chatIDAllocator) Next() int64 {
	if a.next.Load() > maxChatID {
		a.next.Store(0)
	}
	return a.next.Add(1)
}
