package rest

import (
	"errors"
	"net/http"

	"levee/core"
	"levee/handler/param"
	"levee/handler/render"
	"levee/handler/views"
	"levee/pkg/risk"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
)

func listPositionsHandler(positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			User string `schema:"user"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if !govalidator.IsUUID(params.User) {
			render.BadRequest(w, errors.New("invalid user id"))
			return
		}

		list, err := positions.FindByUser(r.Context(), params.User)
		if err != nil {
			render.Code(w, err)
			return
		}

		positionViews := make([]*views.Position, 0, len(list))
		for _, p := range list {
			positionViews = append(positionViews, views.PositionView(p))
		}

		render.JSON(w, positionViews)
	}
}

func positionHandler(positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := positions.Find(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, views.PositionView(position))
	}
}

func positionLimitsHandler(positions core.IPositionStore, pools core.IPoolStore, oracle core.IPriceOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		position, err := positions.Find(ctx, chi.URLParam(r, "id"))
		if err != nil {
			render.Code(w, err)
			return
		}

		pool, err := pools.Find(ctx, position.PoolID)
		if err != nil {
			render.Code(w, err)
			return
		}

		quotes, quoteErrs := oracle.GetPrices(ctx, []string{position.CollateralAsset, position.DebtAsset})
		for _, err := range quoteErrs {
			render.Code(w, err)
			return
		}

		collateralQuote := quotes[position.CollateralAsset]
		debtQuote := quotes[position.DebtAsset]

		health := risk.HealthFactor(
			position.CollateralAmount, collateralQuote.Price,
			position.DebtAmount, debtQuote.Price,
			pool.LiquidationThreshold,
		)

		render.JSON(w, &views.PositionLimits{
			PositionID:   position.ID,
			LTV:          risk.LTV(position.CollateralAmount, collateralQuote.Price, position.DebtAmount, debtQuote.Price),
			HealthFactor: health.NullDecimal(),
			MaxBorrowable: risk.MaxBorrowable(
				position.CollateralAmount, collateralQuote.Price,
				debtQuote.Price, pool.MaxLTV,
			),
			MaxWithdrawable: risk.MaxWithdrawable(
				position.CollateralAmount, collateralQuote.Price,
				position.DebtAmount, debtQuote.Price,
				pool.LiquidationThreshold,
			),
			DegradedPrices: collateralQuote.Degraded || debtQuote.Degraded,
		})
	}
}

func positionLiquidationsHandler(liquidations core.ILiquidationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := liquidations.ListByPosition(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, events)
	}
}

func liquidatableHandler(liquidationz core.ILiquidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposals, err := liquidationz.FindLiquidatablePositions(r.Context())
		if err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, proposals)
	}
}
