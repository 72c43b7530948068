package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"questionflow/internal/config"
	"questionflow/internal/metrics"
	"questionflow/internal/service"
	"questionflow/internal/transport/rest/handler"
	"questionflow/internal/transport/rest/middleware"
	"questionflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	EditorService        *service.EditorService
	WSHub                *ws.Hub
	Metrics              *metrics.Metrics
	CORS                 config.CORSConfig
	Logger               *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, logger)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService, logger)
	editorHandler := handler.NewEditorHandler(c.EditorService, logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.QuestionnaireService, c.CORS.AllowedOrigins, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	r.Use(middleware.Metrics(c.Metrics))

	// Ops
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/swagger/doc.json", swaggerDoc).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Logout revokes the token the request was authenticated with
	v1.Handle("/auth/logout", authMW.RequireHost(http.HandlerFunc(authHandler.Logout))).Methods("POST", "OPTIONS")
	v1.Handle("/auth/admin-logout", authMW.RequireAdmin(http.HandlerFunc(authHandler.AdminLogout))).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/questionnaires/{id}", wsHandler.QuestionnaireFeed).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires", questionnaireHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}", questionnaireHandler.Update).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}", questionnaireHandler.Delete).Methods("DELETE", "OPTIONS")

	// Graph routes
	hostRoutes.HandleFunc("/questionnaires/{id}/nodes", questionnaireHandler.AddNode).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}/nodes/{nodeId}/position", questionnaireHandler.MoveNode).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}/nodes/{nodeId}", questionnaireHandler.DeleteNode).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}/edges", questionnaireHandler.AddEdge).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{id}/edges/{edgeId}", questionnaireHandler.DeleteEdge).Methods("DELETE", "OPTIONS")

	// Editor session routes
	hostRoutes.HandleFunc("/questionnaires/{id}/nodes/{nodeId}/editor", editorHandler.Open).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}", editorHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}", editorHandler.DeleteNode).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/question", editorHandler.SetQuestionText).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/type", editorHandler.SetQuestionType).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/required", editorHandler.SetRequired).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/options", editorHandler.AddOption).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/options/{index}", editorHandler.UpdateOption).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/options/{index}", editorHandler.RemoveOption).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/commit", editorHandler.Commit).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/{sessionId}/cancel", editorHandler.Cancel).Methods("POST", "OPTIONS")

	return r
}

// swaggerDoc serves the swagger document registered by the docs package
func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api documentation not registered"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
