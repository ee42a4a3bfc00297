package main

import (
	"os"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
