package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"futures-trader/internal/config"
	"futures-trader/internal/console"
	"futures-trader/internal/exchange/binance"
	"futures-trader/internal/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "config yaml path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err.Error())
	}
	if err := logger.Init(cfg.Log); err != nil {
		fatal(err.Error())
	}

	// One scanner for the whole process, shared between the credential
	// prompt and the menu loop.
	stdin := bufio.NewScanner(os.Stdin)

	key, secret, err := console.PromptCredentials(stdin, os.Stdout, cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	if err != nil {
		fatal(err.Error())
	}
	cfg.Exchange.APIKey = key
	cfg.Exchange.APISecret = secret

	session, err := binance.NewClient(cfg.Exchange, cfg.Mode == config.ModeTestnet)
	if err != nil {
		fatal(err.Error())
	}

	ctx := context.Background()

	serverTime, err := session.ServerTime(ctx)
	if err != nil {
		fatal(fmt.Sprintf("exchange unreachable: %v", err))
	}
	logger.Info("connected", "exchange", session.Name(),
		"mode", string(cfg.Mode), "server_time", serverTime.UTC().String())

	if err := session.RefreshRules(ctx); err != nil {
		fatal(fmt.Sprintf("trading rules fetch failed: %v", err))
	}
	if _, err := session.AssetBalance(ctx, cfg.Asset); err != nil {
		fatal(fmt.Sprintf("credential check failed: %v", err))
	}

	c := console.New(session, cfg.Asset, stdin, os.Stdout)
	if err := c.Run(ctx); err != nil {
		fatal(err.Error())
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(msg))
	os.Exit(1)
}
