// Package crashlog isolates panics from short-lived handler callbacks so a
// single broken hook, recipe, or layer can never take down the perception or
// action pipeline.
package crashlog

import (
	"fmt"
	"runtime"

	"github.com/nexuscore/nexus/internal/logging"
)

// Guard runs fn and recovers any panic, logging it and returning it as an
// error instead of letting it propagate. Used by internal/hooks, internal/recipe,
// and internal/perception to keep one handler's failure from breaking the pipeline.
func Guard(module string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			logging.Errorf("[%s] recovered panic: %v\n%s", module, r, buf[:n])
			err = fmt.Errorf("%s: panic: %v", module, r)
		}
	}()
	return fn()
}

// GuardVoid is Guard for callbacks that don't return an error.
func GuardVoid(module string, fn func()) {
	_ = Guard(module, func() error {
		fn()
		return nil
	})
}
