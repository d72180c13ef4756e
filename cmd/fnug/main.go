// fnug is a command runner that selects and runs lints, tests, and
// builds based on declarative rules: always-on, git-diff-driven, or
// filesystem-watch-driven.
package main

import (
	"os"

	"github.com/fnug-dev/fnug/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
