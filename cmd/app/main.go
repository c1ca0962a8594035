package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"VolPull/internal/di"
	"VolPull/pkg/config"
	"VolPull/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	mode := flag.String("mode", "serve", "serve | backfill | vov | validate")
	from := flag.String("from", "", "range start (YYYY-MM-DD), batch modes only")
	to := flag.String("to", "", "range end (YYYY-MM-DD), batch modes only")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s assets=%v", cfg.Environment, cfg.Backend.Type, cfg.Deribit.Assets)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	switch *mode {
	case "serve":
		if err := app.Run(); err != nil {
			log.Printf("app error: %v", err)
			os.Exit(1)
		}
	case "backfill", "vov", "validate":
		fromT, toT := parseRange(*from, *to)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		if err := app.RunBatch(ctx, *mode, fromT, toT); err != nil {
			log.Printf("%s error: %v", *mode, err)
			os.Exit(1)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func parseRange(from, to string) (time.Time, time.Time) {
	toT := time.Now().UTC()
	fromT := toT.AddDate(0, -1, 0)
	if from != "" {
		t, ok := util.ParseTime(from)
		if !ok {
			log.Fatalf("bad -from: %q", from)
		}
		fromT = t
	}
	if to != "" {
		t, ok := util.ParseTime(to)
		if !ok {
			log.Fatalf("bad -to: %q", to)
		}
		toT = t
	}
	return fromT, toT
}
