// The main package for the clipper executable.
package main

import (
	"github.com/foglio/clipper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
