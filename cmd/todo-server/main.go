package main

import (
	"log"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application"
	// trigger controller + route registration via init()
	_ "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/api"
	_ "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/registry_ext"
)

var (
	Version = "v0.1.0"
)

func main() {
	app := application.GetApp()

	if err := app.Run(); err != nil {
		log.Fatalf("app exited with error: %v", err)
	}
}
