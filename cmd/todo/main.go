package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"tasktrack/internal/config"
	"tasktrack/internal/debug"
	"tasktrack/internal/storage"
	"tasktrack/internal/ui"
)

func main() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("todo needs an interactive terminal")
		os.Exit(1)
	}

	closeLog, err := debug.Init()
	if err != nil {
		fmt.Printf("failed to open debug log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	debug.Log("config %s: data file %s, export db %s", configPath, cfg.DataFile, cfg.ExportDB)

	archive, err := storage.OpenArchive(cfg.ExportDB)
	if err != nil {
		fmt.Printf("failed to open export database: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	if err := ui.Run(cfg, archive); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
