package fakeplugin

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Prefix       string
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	Appointments *AppointmentHandler
	Customers    *CustomerHandler
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter mounts the plugin routes below cfg.Prefix.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	prefix := strings.TrimRight(cfg.Prefix, "/")

	if cfg.Auth != nil {
		mux.HandleFunc(prefix+"/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc(prefix+"/auth/validate", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
				return
			}
			cfg.Auth.Validate(w, r)
		})
	}

	if cfg.Catalog != nil {
		get := func(path string, handle http.HandlerFunc) {
			mux.HandleFunc(prefix+path, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				handle(w, r)
			})
		}
		get("/services", cfg.Catalog.ListServices)
		get("/staff", cfg.Catalog.ListStaff)
		get("/design-settings", cfg.Catalog.DesignSettings)
		get("/availability", cfg.Catalog.Availability)
		get("/slots", cfg.Catalog.Slots)

		mux.HandleFunc(prefix+"/services/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, prefix+"/services/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.GetService(w, r, id)
		})
		mux.HandleFunc(prefix+"/staff/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, prefix+"/staff/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.GetStaff(w, r, id)
			case http.MethodPut:
				cfg.Catalog.UpdateStaff(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Appointments != nil {
		mux.HandleFunc(prefix+"/appointments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.List(w, r)
			case http.MethodPost:
				cfg.Appointments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc(prefix+"/appointments/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, prefix+"/appointments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.Get(w, r, id)
			case http.MethodPut:
				cfg.Appointments.Update(w, r, id)
			case http.MethodDelete:
				cfg.Appointments.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Customers != nil {
		mux.HandleFunc(prefix+"/customers", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Customers.List(w, r)
			case http.MethodPost:
				cfg.Customers.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc(prefix+"/customers/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, prefix+"/customers/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Customers.Get(w, r, id)
			case http.MethodPut:
				cfg.Customers.Update(w, r, id)
			case http.MethodDelete:
				cfg.Customers.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
