// Command chainnet encodes Keras models for a size- and call-bounded
// execution target, plans their weight uploads, and runs them locally.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
