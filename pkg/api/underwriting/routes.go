package underwriting

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts every underwriting endpoint under /api/v1/underwriting.
func Register(router *mux.Router, h *Handler) {
	sub := router.PathPrefix("/api/v1/underwriting").Subrouter()
	sub.Use(corsMiddleware)

	sub.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/process", h.HandleProcess).Methods(http.MethodPost, http.MethodOptions)
	sub.HandleFunc("/process/stream", h.HandleProcessStream).Methods(http.MethodPost, http.MethodOptions)
	sub.HandleFunc("/process/file", h.HandleProcessFile).Methods(http.MethodPost, http.MethodOptions)
	sub.HandleFunc("/agents", h.HandleAgents).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/sample-data", h.HandleSampleData).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/demo", h.HandleDemo).Methods(http.MethodPost, http.MethodOptions)
	sub.HandleFunc("/reports", h.HandleReports).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/reports/{appId}", h.HandleReport).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/reports/{appId}/all", h.HandleReportVersions).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/reports/{appId}/html", h.HandleReportHTML).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/dashboard-data", h.HandleDashboardData).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/config", h.HandleConfig).Methods(http.MethodGet, http.MethodOptions)
	sub.HandleFunc("/config/switch", h.HandleConfigSwitch).Methods(http.MethodPost, http.MethodOptions)
	sub.HandleFunc("/ws/{clientId}", h.HandleWebSocket(NewConnManager())).Methods(http.MethodGet)
}

// corsMiddleware keeps the API permissive for browser dashboards.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
