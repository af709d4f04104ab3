package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
}

func registerJobRoutes(mux *http.ServeMux, handler *Handler, serviceKey string) {
	mux.Handle("POST /v1/scrape", RequireServiceKey(serviceKey, http.HandlerFunc(handler.Scrape)))
	mux.Handle("POST /v1/finalize", RequireServiceKey(serviceKey, http.HandlerFunc(handler.Finalize)))
	mux.Handle("POST /v1/timezones/{timezone}/scrape", RequireServiceKey(serviceKey, http.HandlerFunc(handler.TimezoneScrape)))
	mux.Handle("POST /v1/timezones/{timezone}/finalize", RequireServiceKey(serviceKey, http.HandlerFunc(handler.TimezoneFinalize)))
	mux.Handle("POST /v1/sweeps/scrape", RequireServiceKey(serviceKey, http.HandlerFunc(handler.SweepScrape)))
	mux.Handle("POST /v1/sweeps/finalize", RequireServiceKey(serviceKey, http.HandlerFunc(handler.SweepFinalize)))
	mux.Handle("GET /v1/scheduler/status", RequireServiceKey(serviceKey, http.HandlerFunc(handler.SchedulerStatus)))
}
