package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/quickshow/quickshow-api/internal/app"
)

func main() {
	// Missing .env is fine, all settings can come from flags or the
	// environment directly.
	godotenv.Load()

	err := app.Run()
	if err != nil {
		slog.Error("server terminated", "error", err)
		os.Exit(1)
	}
}
