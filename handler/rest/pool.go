package rest

import (
	"net/http"

	"levee/core"
	"levee/handler/render"
	"levee/handler/views"

	"github.com/go-chi/chi"
)

func listPoolsHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := pools.All(r.Context())
		if err != nil {
			render.Code(w, err)
			return
		}

		poolViews := make([]*views.Pool, 0, len(list))
		for _, p := range list {
			poolViews = append(poolViews, views.PoolView(p))
		}

		render.JSON(w, poolViews)
	}
}

func poolHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, err := pools.Find(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, views.PoolView(pool))
	}
}
