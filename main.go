// Package main is the entry point for the lrcshow application.
package main

import (
	"github.com/lrcshow-cli/lrcshow/cmd"
	"github.com/lrcshow-cli/lrcshow/config"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
