package app

import (
	"os"
	"sync"
)

const testModeEnv = "EDUCONTROL_TEST_MODE"

// InTestMode reports whether the binaries should skip runtime side effects
// such as binding ports or dialing Redis. The flag is read once.
var InTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})
