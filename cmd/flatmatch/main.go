package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/flatmatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/flatmatch/config.toml)")
	prefsPath := flag.String("prefs", "", "preferences file path (optional)")
	envFile := flag.String("env", "", "dotenv file to read (optional, defaults to ./.env)")
	storage := flag.String("storage", "", "storage backend: file, sqlite or memory (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		EnvFile:    *envFile,
		Storage:    *storage,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "flatmatch: %v\n", err)
		return 1
	}
	return 0
}
