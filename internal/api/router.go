package api

import (
	"github.com/gorilla/mux"
)

// NewRouter wires every API route onto a mux router.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/metrics", h.Metrics).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", h.Root).Methods("GET")

	api.HandleFunc("/brands", h.CreateBrand).Methods("POST")
	api.HandleFunc("/brands", h.ListBrands).Methods("GET")
	api.HandleFunc("/brands/{id}", h.GetBrand).Methods("GET")
	api.HandleFunc("/brands/{id}", h.UpdateBrand).Methods("PUT")
	api.HandleFunc("/brands/{id}", h.DeleteBrand).Methods("DELETE")

	api.HandleFunc("/comments", h.CreateComment).Methods("POST")
	api.HandleFunc("/comments", h.ListComments).Methods("GET")
	api.HandleFunc("/comments/{id}/respond", h.RespondComment).Methods("PUT")

	api.HandleFunc("/mentions", h.CreateMention).Methods("POST")
	api.HandleFunc("/mentions", h.ListMentions).Methods("GET")

	api.HandleFunc("/posts", h.CreatePost).Methods("POST")
	api.HandleFunc("/posts", h.ListPosts).Methods("GET")

	api.HandleFunc("/alerts", h.ListAlerts).Methods("GET")
	api.HandleFunc("/alerts/{id}/acknowledge", h.AcknowledgeAlert).Methods("PUT")

	api.HandleFunc("/analytics/dashboard", h.Dashboard).Methods("GET")
	api.HandleFunc("/analytics/trends", h.Trends).Methods("GET")

	api.HandleFunc("/sample-data/generate", h.GenerateSampleData).Methods("POST")

	return router
}
