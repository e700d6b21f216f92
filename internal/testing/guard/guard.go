package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BRIGHTMARK_TEST_MODE") == "" {
			_ = os.Setenv("BRIGHTMARK_TEST_MODE", "1")
		}
	})
}
