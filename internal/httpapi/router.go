package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Listings
	lh := ListingsHandler{
		List:    d.ListListings,
		Delete:  d.DeleteListing,
		Hub:     d.Hub,
		Refresh: d.Feed.Refresh,
		Now:     d.Now,
	}
	mux.HandleFunc("/listings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.ListClassified,
	}))
	mux.HandleFunc("/listings/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: lh.DeleteByPath, // expects /listings/{id}
	}))

	// Extraction upload
	xh := ExtractHandler{
		Extract: d.Extract,
		Create:  d.CreateListing,
		Hub:     d.Hub,
		Refresh: d.Feed.Refresh,
	}
	mux.HandleFunc("/extract", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.Upload,
	}))

	// Sweep
	sh := SweepHandler{Status: d.SweepStatus, Hub: d.Hub, RunSweep: d.RunSweep}
	mux.HandleFunc("/sweep/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.GetStatus,
	}))
	mux.HandleFunc("/sweep/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use CfgVal, not a snapshot cfg)
	sk := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/ai", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sk.SetAIKey,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
