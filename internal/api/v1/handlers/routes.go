package handlers

import (
	"net/http"

	chathandlers "github.com/deepgram/ragbridge/internal/api/v1/handlers/chat"
	"github.com/deepgram/ragbridge/internal/api/v1/handlers/health"
	proxyhandlers "github.com/deepgram/ragbridge/internal/api/v1/handlers/proxy"
	wshandlers "github.com/deepgram/ragbridge/internal/api/v1/handlers/websocket"
	v1mware "github.com/deepgram/ragbridge/internal/api/v1/middleware"
	"github.com/deepgram/ragbridge/internal/services"
	"github.com/deepgram/ragbridge/pkg/httpext"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	router.Use(v1mware.RequestID)
	router.Use(v1mware.Recover)
	router.Use(v1mware.AccessLog(services.GetMetrics()))

	completions := func(w http.ResponseWriter, r *http.Request) {
		chathandlers.HandleChatCompletions(services.GetChatService(), w, r)
	}
	passthrough := func(w http.ResponseWriter, r *http.Request) {
		proxyhandlers.HandlePassthrough(services.GetProxyService(), w, r)
	}

	// Unversioned aliases for clients configured without the /v1 suffix
	router.HandleFunc("/chat/completions", completions).Methods("POST")
	router.HandleFunc("/proxy/chat/completions", passthrough).Methods("POST")

	router.HandleFunc("/api/health", health.HandleHealth).Methods("GET")
	router.Handle("/metrics", services.GetMetrics().Handler()).Methods("GET")

	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()

	v1chatRouter := v1.PathPrefix("/chat").Subrouter()
	v1chatRouter.HandleFunc("/completions", completions).Methods("POST")
	v1chatRouter.HandleFunc("/completions/ws", func(w http.ResponseWriter, r *http.Request) {
		wshandlers.HandleChatWebSocket(services.GetChatService(), services.GetConnectionManager(), w, r)
	}).Methods("GET")

	v1.HandleFunc("/proxy/chat/completions", passthrough).Methods("POST")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonFailure(w, "Endpoint not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}
