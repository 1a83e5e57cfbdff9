package main

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/events"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/mcdev12/icetime/go/internal/users"
)

func setupServer(port string, services *Services, verifier *auth.Verifier) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Register services
	registerServices(mux, services, verifier)

	// Add health check endpoint
	setupHealthCheck(mux)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services, verifier *auth.Verifier) {
	interceptors := connect.WithInterceptors(auth.NewInterceptor(verifier))

	// Register roster service
	rosterServicePath, rosterServiceHandler := roster.NewHandler(services.Roster, interceptors)
	mux.Handle(rosterServicePath, rosterServiceHandler)

	// Register event service
	eventServicePath, eventServiceHandler := events.NewHandler(services.Events, interceptors)
	mux.Handle(eventServicePath, eventServiceHandler)

	// Register user service
	userServicePath, userServiceHandler := users.NewHandler(services.Users, interceptors)
	mux.Handle(userServicePath, userServiceHandler)

	// Downloads
	mux.Handle("GET /events/{id}/roster.xlsx", auth.Middleware(verifier, services.Roster.ExportHandler()))
	mux.Handle("GET /events/{id}/calendar.ics", services.Events.CalendarHandler())
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
