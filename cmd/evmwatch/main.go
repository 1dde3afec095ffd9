package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/evmstate/config"
	"github.com/ethpandaops/evmstate/logging"
	"github.com/ethpandaops/evmstate/metrics"
	pebbleengine "github.com/ethpandaops/evmstate/store/pebble"
	"github.com/ethpandaops/evmstate/store"
	"github.com/ethpandaops/evmstate/rpcclient"
	"github.com/ethpandaops/evmstate/utils"
	"github.com/ethpandaops/evmstate/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, if empty string defaults will be used")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		println(utils.GetVersion())
		return
	}

	cfg, err := config.ReadConfig(*configPath)
	if err != nil {
		logging.LogFatal(err, "error reading config file", 0)
	}

	logger, err := logging.InitLogger(logging.Config{
		OutputLevel:  cfg.Logging.OutputLevel,
		OutputFormat: cfg.Logging.OutputFormat,
		FilePath:     cfg.Logging.FilePath,
		FileLevel:    cfg.Logging.FileLevel,
	})
	if err != nil {
		logging.LogFatal(err, "error initializing logger", 0)
	}

	logger.WithFields(logrus.Fields{
		"config":  *configPath,
		"version": utils.GetVersion(),
	}).Info("starting evmwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addresses, err := config.LoadAddresses(cfg.Watchlist.AddressesFile)
	if err != nil {
		logging.LogFatal(err, "error loading watchlist addresses", 0)
	}
	tokens, err := config.LoadTokens(cfg.Watchlist.TokensFile)
	if err != nil {
		logging.LogFatal(err, "error loading watchlist tokens", 0)
	}

	eng, err := pebbleengine.Open(pebbleengine.Config{Path: cfg.Store.Path, CacheSize: cfg.Store.CacheSize})
	if err != nil {
		logging.LogFatal(err, "error opening store", 0)
	}
	defer eng.Close()
	st := store.New(eng)

	client := rpcclient.New(cfg.RPC.Endpoint, cfg.RPC.Headers)
	if err := client.Connect(ctx); err != nil {
		logging.LogFatal(err, "error connecting to rpc endpoint", 0)
	}
	defer client.Close()

	var cache *watcher.ContractCache
	if cfg.Watcher.ContractCacheSize > 0 {
		cache, err = watcher.NewBounded(client, cfg.Watcher.ContractCacheSize)
		if err != nil {
			logging.LogFatal(err, "error constructing bounded contract cache", 0)
		}
	} else {
		cache = watcher.New(client)
	}

	if cfg.Metrics.Enabled {
		if err := metrics.StartMetricsServer(logger.WithField("module", "metrics"), cfg.Metrics.Host, cfg.Metrics.Port, st); err != nil {
			logging.LogFatal(err, "error starting metrics server", 0)
		}
	}

	w := watcher.NewWatcher(client, st, cache, watcher.Watched{Addresses: addresses, Tokens: tokens}, cfg.Watcher.PollInterval, logger.WithField("module", "watcher"))

	if err := w.Initialize(ctx); err != nil {
		logging.LogFatal(err, "error initializing watcher", 0)
	}

	go func() {
		defer utils.HandleSubroutinePanic("shutdown-wait")
		utils.WaitForCtrlC()
		logger.Info("shutdown signal received, finishing in-flight block")
		cancel()
	}()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logging.LogFatal(err, "watcher loop exited unexpectedly", 0)
	}

	logger.Info("evmwatch stopped")
}
