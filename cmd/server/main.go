package main

import (
	"context"
	"flag"
	"log"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
)

func main() {
	configPath := flag.String("config", "config", "config file or directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
