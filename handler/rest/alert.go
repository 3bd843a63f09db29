package rest

import (
	"encoding/json"
	"net/http"

	"levee/core"
	"levee/handler/param"
	"levee/handler/render"

	"github.com/fox-one/pkg/property"
)

func alertsHandler(alerts core.IAlertStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Position string `schema:"position"`
			Limit    int    `schema:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		var (
			list []*core.Alert
			err  error
		)
		if params.Position != "" {
			list, err = alerts.ListByPosition(r.Context(), params.Position, params.Limit)
		} else {
			list, err = alerts.ListRecent(r.Context(), params.Limit)
		}

		if err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func monitorStatsHandler(properties property.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := properties.Get(r.Context(), core.MonitorStatsProperty)
		if err != nil {
			render.Code(w, err)
			return
		}

		var stats core.MonitorStats
		if raw := v.String(); raw != "" {
			if err := json.Unmarshal([]byte(raw), &stats); err != nil {
				render.Code(w, err)
				return
			}
		}

		render.JSON(w, stats)
	}
}

func resetMonitorStatsHandler(properties property.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal(core.MonitorStats{})
		if err := properties.Save(r.Context(), core.MonitorStatsProperty, string(raw)); err != nil {
			render.Code(w, err)
			return
		}

		render.JSON(w, render.H{"reset": true})
	}
}
