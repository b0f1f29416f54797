package main

import (
	"flag"
	"log"

	"dispatch-console/core/appbootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	if err := appbootstrap.Run(*configPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
