package assert

import (
	"fmt"
)

// Length panics when value does not have exactly expected bytes
func Length(value string, expected int) {
	if len(value) != expected {
		panic(fmt.Sprintf("assert.Length expected %d actual %d", expected, len(value)))
	}
}

// NonNegative panics on a negative value
func NonNegative(name string, value int) {
	if value < 0 {
		panic(fmt.Sprintf("assert.NonNegative %s is %d", name, value))
	}
}
