// Command firmlowerc is a demonstration harness for the SSA-to-LLIR
// lowering core. It has no front end of its own: the program it lowers
// is built in, not read from a file. Its purpose is to exercise
// internal/lower.Options end to end through a real CLI surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/containerd/log"
)

func main() {
	cmd := newLowerCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.L.WithError(err).Error("firmlowerc failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
