package main

import (
	"os"

	"go-auth-api/internal/config"
)

var version = "dev"

func main() {
	cmd := NewRootCmd(config.Load)
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
