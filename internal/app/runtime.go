package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "CREWBASE_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether the application should skip runtime side effects.
// The flag is read once; the guard package sets it during test binary init,
// before any caller can observe a stale value.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testModeFlag.Store(os.Getenv(testModeEnv) == "1")
	})
	return testModeFlag.Load()
}
