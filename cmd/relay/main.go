// Package main provides the entry point for the relay CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory supplies credentials for the wrapped
	// CLIs (gh, kubectl, terraform). Absence is fine.
	_ = godotenv.Load()

	os.Exit(Execute())
}
