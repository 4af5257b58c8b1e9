package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Daily index
	api.HandleFunc("/index", handler.GetIndexByDate).Methods("GET")
	api.HandleFunc("/index/latest", handler.GetLatestIndex).Methods("GET")
	api.HandleFunc("/index/{category}/{generation}/history", handler.GetIndexHistory).Methods("GET")

	// Products
	api.HandleFunc("/products", handler.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", handler.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/history", handler.GetProductHistory).Methods("GET")

	// Monitoring
	api.HandleFunc("/quality", handler.GetQualityLog).Methods("GET")
	api.HandleFunc("/summary", handler.GetChangeSummary).Methods("GET")

	return r
}
