package cancellations

import (
	"net/http"

	"github.com/gorilla/mux"

	"CancelDash/api"
	"CancelDash/api/constants"
)

// NewRouter mounts the dashboard endpoints under /dashboard.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(api.RequestLogMiddleware, api.CORSMiddleware)

	d := router.PathPrefix(constants.DashboardPrefix).Subrouter()
	d.HandleFunc("/hello", h.Hello).Methods(http.MethodGet)
	d.HandleFunc("/upload", h.Upload).Methods(http.MethodPost, http.MethodOptions)
	d.HandleFunc("/data", h.Data).Methods(http.MethodGet)
	d.HandleFunc("/data/filter", h.Filter).Methods(http.MethodPost, http.MethodOptions)
	d.HandleFunc("/export", h.Export).Methods(http.MethodPost, http.MethodOptions)
	d.HandleFunc("/download/{token}", h.Download).Methods(http.MethodGet)
	d.HandleFunc("/manual/add", h.ManualAdd).Methods(http.MethodPost, http.MethodOptions)
	d.HandleFunc("/manual/update/{row}", h.ManualUpdate).Methods(http.MethodPut, http.MethodOptions)
	d.HandleFunc("/history", h.History).Methods(http.MethodGet)
	d.HandleFunc("/events", h.Events).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
	})
	return router
}
