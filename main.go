package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/poleguard/repeal/cmd"
)

func main() {
	// Best effort: API keys may live in a local .env file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
