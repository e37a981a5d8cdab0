package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("EDUCONTROL_TEST_MODE", "1")
		// Tests never reach a real school API.
		if os.Getenv("AUTH_API_URL") == "" {
			_ = os.Setenv("AUTH_API_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
