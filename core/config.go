package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config levee config
type Config struct {
	DB       db.Config      `json:"db"`
	Chain    ChainConfig    `json:"chain"`
	Oracle   OracleConfig   `json:"oracle"`
	Monitor  MonitorConfig  `json:"monitor"`
	Scanner  ScannerConfig  `json:"scanner"`
	Notifier NotifierConfig `json:"notifier"`
}

// ChainConfig chain gateway config
type ChainConfig struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
	// Pools addresses of the pool contracts to sync
	Pools        []string      `json:"pools"`
	SyncInterval time.Duration `json:"sync_interval"`
}

// OracleConfig price oracle client config
type OracleConfig struct {
	CacheTTL           time.Duration `json:"cache_ttl"`
	StalenessTolerance time.Duration `json:"staleness_tolerance"`
	QueryTimeout       time.Duration `json:"query_timeout"`
	MinSourceCount     int           `json:"min_source_count"`
	// Assets maps internal asset ids to oracle identifiers; an asset
	// missing here is unsupported
	Assets map[string]string `json:"assets"`
}

// MonitorConfig position monitor config
type MonitorConfig struct {
	Interval          time.Duration   `json:"interval"`
	WarningThreshold  decimal.Decimal `json:"warning_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
}

// ScannerConfig liquidation scan worker config
type ScannerConfig struct {
	Interval time.Duration `json:"interval"`
	// ExecutorURL endpoint of the external liquidation executor
	ExecutorURL string        `json:"executor_url"`
	Timeout     time.Duration `json:"timeout"`
}

// NotifierConfig alert webhook config
type NotifierConfig struct {
	WebhookURL string        `json:"webhook_url"`
	Timeout    time.Duration `json:"timeout"`
}
