package main

import (
	"fmt"
	"os"

	"github.com/diewo77/go-rentals/internal/app"
	"github.com/diewo77/go-rentals/internal/cli"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	env := cli.NewEnv(cfg, app.NewLogger(cfg.App.LogLevel))
	if err := cli.NewRootCmd(env).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
