package main

import (
	"os"

	"github.com/baaaaaaaka/codex-resume/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
