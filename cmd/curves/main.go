// Command curves renders learning curves from TensorBoard event logs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/curves/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands print their own formatted errors; only report flag and
		// argument errors cobra raised before a command ran.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
