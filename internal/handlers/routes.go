package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Clients   ClientRegistry
	Resolver  LinkResolver
	Trending  TrendingSource
	History   HistoryStore
	Favorites FavoriteStore
	Settings  SettingsStore
	Jobs      JobStore
	Downloads DownloadEnqueuer

	// LookupLimiter throttles the endpoints that hit the upstream API.
	LookupLimiter RateLimiter
	// ClientAuth guards every client-scoped route.
	ClientAuth func(http.Handler) http.Handler

	StrictProfiles bool
	PreferHD       bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	clients := ClientHandler{Registry: deps.Clients}
	resolve := ResolveHandler{
		Resolver:       deps.Resolver,
		History:        deps.History,
		Settings:       deps.Settings,
		Jobs:           deps.Jobs,
		Downloads:      deps.Downloads,
		Limiter:        deps.LookupLimiter,
		StrictProfiles: deps.StrictProfiles,
		PreferHD:       deps.PreferHD,
	}
	downloads := DownloadHandler{Jobs: deps.Jobs, History: deps.History, Resolver: deps.Resolver, Downloads: deps.Downloads}
	trending := TrendingHandler{Source: deps.Trending, Limiter: deps.LookupLimiter}
	history := HistoryHandler{History: deps.History}
	favorites := FavoriteHandler{Favorites: deps.Favorites, History: deps.History}
	settings := SettingsHandler{Settings: deps.Settings}

	authed := func(handler http.HandlerFunc) http.Handler {
		if deps.ClientAuth == nil {
			return handler
		}
		return deps.ClientAuth(handler)
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/clients", clients.Register)
	mux.HandleFunc("/api/v1/trending", trending.Handle)
	mux.Handle("/api/v1/resolve", authed(resolve.Handle))
	mux.Handle("/api/v1/downloads", authed(downloads.Create))
	mux.Handle("/api/v1/downloads/", authed(downloads.Status))
	mux.Handle("/api/v1/history", authed(history.Handle))
	mux.Handle("/api/v1/favorites", authed(favorites.Collection))
	mux.Handle("/api/v1/favorites/", authed(favorites.Item))
	mux.Handle("/api/v1/settings", authed(settings.Handle))
}
