package rest

import (
	"errors"
	"net/http"

	"levee/core"
	"levee/handler/render"

	"github.com/fox-one/pkg/property"
	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	positions core.IPositionStore,
	pools core.IPoolStore,
	alerts core.IAlertStore,
	liquidations core.ILiquidationStore,
	oracle core.IPriceOracleService,
	liquidationz core.ILiquidationService,
	properties property.Store,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/positions", listPositionsHandler(positions))
	router.Get("/positions/{id}", positionHandler(positions))
	router.Get("/positions/{id}/limits", positionLimitsHandler(positions, pools, oracle))
	router.Get("/positions/{id}/liquidations", positionLiquidationsHandler(liquidations))
	router.Get("/liquidatable", liquidatableHandler(liquidationz))
	router.Get("/pools", listPoolsHandler(pools))
	router.Get("/pools/{id}", poolHandler(pools))
	router.Get("/alerts", alertsHandler(alerts))
	router.Get("/monitor/stats", monitorStatsHandler(properties))
	router.Delete("/monitor/stats", resetMonitorStatsHandler(properties))

	return router
}
