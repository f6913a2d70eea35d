package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tauraamui/camarchive/pkg/log"
)

const (
	name        = "camarchived"
	description = "Camera archive daemon which saves changed camera frames to disk"
)

func main() {
	// a missing .env is normal, the environment and flags still apply
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error()) //nolint
		os.Exit(1)
	}
}
