// Package lock serializes mutations per sector count. Each (cycle, sector)
// pair is an independent unit; different keys never wait on each other.
package lock

import (
	"context"
	"fmt"
)

type Locker interface {
	// Acquire blocks until key is held or ctx is done.
	Acquire(ctx context.Context, key string) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

func SectorKey(cycleID, sectorID string) string {
	return fmt.Sprintf("lock:stockcount:sector:%s:%s", cycleID, sectorID)
}

func CompanyKey(companyID string) string {
	return fmt.Sprintf("lock:stockcount:company:%s", companyID)
}

func CycleKey(cycleID string) string {
	return fmt.Sprintf("lock:stockcount:cycle:%s", cycleID)
}
