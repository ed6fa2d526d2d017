package main

import (
	"flag"
	"log"

	"devdeck/internal/app"
	"devdeck/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	controller := app.New(app.Options{ConfigPath: *configPath})
	if err := tui.Run(controller); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
