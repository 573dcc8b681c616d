// Package assert holds invariant checks that panic when violated. They guard
// values produced by our own code, never user input.
package assert

import (
	"fmt"
)

// Length panics unless value is exactly expected bytes long
func Length(value string, expected int) {
	if len(value) != expected {
		panic(fmt.Sprintf("assert.Length: want %d bytes, got %d", expected, len(value)))
	}
}
