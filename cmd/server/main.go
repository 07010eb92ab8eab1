package main

import (
	"fmt"
	"os"

	"github.com/gpp-archive/autharch/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Starting HTTP server...", "addr", a.Cfg.ListenAddr)
	if err := a.Run(a.Cfg.ListenAddr); err != nil {
		a.Log.Error("Server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
}
