package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/config"
	"github.com/minhlq/saoke/pkg/profile"
	"github.com/minhlq/saoke/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "saoke",
	})

	cfgFile := flag.String("config", "", "Config file (default is config.yaml)")
	flag.Parse()

	cfg, err := config.Build(*cfgFile, nil)
	if err != nil {
		logger.Fatal("config error", "err", err)
	}
	profiles, err := profile.Load(cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("profile error", "err", err)
	}

	srv := server.New(cfg, profiles, logger)
	logger.Info("starting server", "addr", cfg.ListenAddr)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
