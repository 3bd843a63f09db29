package cmd

import (
	"sync"

	"levee/worker"
	"levee/worker/monitor"
	"levee/worker/poolsync"
	"levee/worker/scanner"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "levee risk engine worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		positionStore := providePositionStore(database)
		poolStore := providePoolStore(database)
		liquidationStore := provideLiquidationStore(database)
		alertStore := provideAlertStore(database)

		chainReader := provideChainReader()
		oracleService := provideOracleService(chainReader)
		liquidationService := provideLiquidationService(positionStore, poolStore, liquidationStore, oracleService)
		notificationService := provideNotificationService(alertStore)

		workers := []worker.Worker{
			monitor.New(cfg.Monitor, positionStore, poolStore, oracleService, notificationService, propertyStore),
			scanner.New(cfg.Scanner, liquidationService, provideProposalSink()),
			poolsync.New(cfg.Chain, database, poolStore, chainReader, chainReader),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
