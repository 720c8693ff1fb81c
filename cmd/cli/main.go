package main

import (
	"github.com/stencil-engine/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
