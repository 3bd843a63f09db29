package cmd

import (
	"time"

	"levee/core"
	"levee/service/chain"
	"levee/service/executor"
	liquidationservice "levee/service/liquidation"
	"levee/service/notifier"
	"levee/service/oracle"
	"levee/store/alert"
	"levee/store/liquidation"
	"levee/store/pool"
	"levee/store/position"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/lib/pq"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return pool.Cache(pool.New(db), time.Minute)
}

func provideLiquidationStore(db *db.DB) core.ILiquidationStore {
	return liquidation.New(db)
}

func provideAlertStore(db *db.DB) core.IAlertStore {
	return alert.New(db)
}

// ------------------service------------------------------------

func provideChainReader() *chain.Reader {
	return chain.New(chain.Config{
		Endpoint: cfg.Chain.Endpoint,
		Timeout:  cfg.Chain.Timeout,
	})
}

func provideOracleService(reader core.OracleReader) core.IPriceOracleService {
	return oracle.New(reader, oracle.Config{
		CacheTTL:           cfg.Oracle.CacheTTL,
		StalenessTolerance: cfg.Oracle.StalenessTolerance,
		QueryTimeout:       cfg.Oracle.QueryTimeout,
		MinSourceCount:     cfg.Oracle.MinSourceCount,
		Assets:             cfg.Oracle.Assets,
	})
}

func provideLiquidationService(
	positions core.IPositionStore,
	pools core.IPoolStore,
	liquidations core.ILiquidationStore,
	oracle core.IPriceOracleService,
) core.ILiquidationService {
	return liquidationservice.New(positions, pools, liquidations, oracle)
}

func provideNotificationService(alerts core.IAlertStore) core.INotificationService {
	return notifier.New(notifier.Config{
		WebhookURL: cfg.Notifier.WebhookURL,
		Timeout:    cfg.Notifier.Timeout,
	}, alerts)
}

func provideProposalSink() core.ProposalSink {
	return executor.New(executor.Config{
		Endpoint: cfg.Scanner.ExecutorURL,
		Timeout:  cfg.Scanner.Timeout,
	})
}
