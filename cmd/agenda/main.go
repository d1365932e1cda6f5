package main

import (
	"fmt"
	"os"

	"agenda/internal/config"
	"agenda/internal/logging"
	"agenda/internal/storage"
	"agenda/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.Open(cfg.LogPath)
	if err != nil {
		logger = logging.Discard()
	} else {
		defer closer.Close()
	}

	store, err := storage.Open(cfg.StorePath)
	if err != nil {
		fmt.Printf("failed to open task file: %v\n", err)
		os.Exit(1)
	}

	if err := ui.Run(store, cfg, logger); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
