package main

import (
	"errors"
	"os"

	"github.com/rustyeddy/dcabot/cmd/dcabot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrNoDataSource) || errors.Is(err, cmd.ErrUnhealthy) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
