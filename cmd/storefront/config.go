package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/storefront/historyclient"
)

const (
	envDB         = "STOREFRONT_DB"
	envAPIURL     = "STOREFRONT_API_URL"
	envAPITimeout = "STOREFRONT_API_TIMEOUT"
	envReportTZ   = "STOREFRONT_REPORT_TZ"
)

type envLookup func(string) (string, bool)

// clientConfig — настройки CLI-клиента.
type clientConfig struct {
	DBPath     string
	APIURL     string
	APITimeout time.Duration
	ReportTZ   string
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		DBPath:     "data/storefront.db",
		APIURL:     "http://localhost:3000",
		APITimeout: historyclient.DefaultTimeout,
		ReportTZ:   "Local",
	}
}

// readClientConfig накладывает окружение на значения по умолчанию; кривые значения дают предупреждение.
func readClientConfig(lookup envLookup) (clientConfig, []string) {
	cfg := defaultClientConfig()
	var warnings []string

	if v, ok := lookup(envDB); ok && strings.TrimSpace(v) != "" {
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(envAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.APIURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(envReportTZ); ok && strings.TrimSpace(v) != "" {
		cfg.ReportTZ = strings.TrimSpace(v)
	}
	if v, ok := lookup(envAPITimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: invalid duration value %q", envAPITimeout, v))
		case d <= 0:
			warnings = append(warnings, fmt.Sprintf("%s: value %s must be > 0", envAPITimeout, d))
		default:
			cfg.APITimeout = d
		}
	}
	return cfg, warnings
}
