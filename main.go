// Package main is the entry point for reelgate.
package main

import (
	"github.com/reelgate/reelgate/cmd"
	"github.com/reelgate/reelgate/config"
	"github.com/reelgate/reelgate/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
