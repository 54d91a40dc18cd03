package logging

import (
	"log"

	"estate_e2e/models"
)

// Func records a leveled message for a scope (scenario name, "runner", ...).
type Func func(level models.LogLevel, scope, message string)

// Std writes through the standard logger in the same shape the runner uses.
var Std Func = func(level models.LogLevel, scope, message string) {
	log.Printf("[%s] %s: %s", level, scope, message)
}

// Tee fans a message out to every non-nil func.
func Tee(fns ...Func) Func {
	return func(level models.LogLevel, scope, message string) {
		for _, fn := range fns {
			if fn != nil {
				fn(level, scope, message)
			}
		}
	}
}
