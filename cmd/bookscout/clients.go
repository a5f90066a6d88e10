package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/csheth/bookscout/internal/config"
	"github.com/csheth/bookscout/internal/ndl"
	"github.com/csheth/bookscout/internal/openbd"
)

func buildNDLClient(cfg *config.Config, withCache bool) *ndl.Client {
	var cache *ndl.Cache
	if withCache {
		var err error
		cache, err = ndl.NewCache(cfg.NDL.CacheDir, cfg.NDL.CacheTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "response cache disabled:", err)
		}
	}
	return ndl.New(ndl.Config{
		BaseURL:    cfg.NDL.BaseURL,
		MaxRecords: cfg.NDL.MaxRecords,
		HTTPClient: &http.Client{Timeout: cfg.NDL.Timeout},
		Cache:      cache,
	})
}

func buildOpenBDClient(cfg *config.Config) *openbd.Client {
	return openbd.New(openbd.Config{
		BaseURL:    cfg.OpenBD.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.OpenBD.Timeout},
	})
}
