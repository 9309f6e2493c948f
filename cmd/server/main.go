package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/parkrow/propertyops/internal/auth"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/handlers"
	"github.com/parkrow/propertyops/internal/maintenance"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	configureLogging()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	database := client.Database(db.DatabaseName())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}
	cancel()

	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	properties := &db.MongoPropertyCollection{
		Properties: database.Collection("properties"),
		Units:      database.Collection("units"),
	}
	requests := &db.MongoMaintenanceCollection{
		Requests: database.Collection("maintenanceRequests"),
		Updates:  database.Collection("maintenanceUpdates"),
	}
	passes := &db.MongoVisitorCollection{Collection: database.Collection("visitorPasses")}
	deliveries := &db.MongoDeliveryCollection{Collection: database.Collection("deliveries")}

	publisher, err := notify.NewMQTTPublisher()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MQTT broker")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}
	maintenanceService := maintenance.NewService(requests, users, publisher)

	authHandler := handlers.NewAuthHandler(authService, users)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService, users, properties)
	analyticsHandler := handlers.NewAnalyticsHandler(maintenanceService, users)
	propertyHandler := handlers.NewPropertyHandler(properties, users)
	visitorHandler := handlers.NewVisitorHandler(passes, users)
	deliveryHandler := handlers.NewDeliveryHandler(deliveries, users)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", authHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)

	api.HandleFunc("/maintenance/requests", maintenanceHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/requests", maintenanceHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/my-requests", maintenanceHandler.MyRequests).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/requests/bulk-status", maintenanceHandler.BulkUpdateStatus).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/requests/{id}", maintenanceHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/requests/{id}/assign", maintenanceHandler.Assign).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/requests/{id}/status", maintenanceHandler.UpdateStatus).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/requests/{id}/cost", maintenanceHandler.UpdateCost).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/kpis", analyticsHandler.KPIs).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/trends", analyticsHandler.Trends).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/workload", analyticsHandler.Workload).Methods(http.MethodGet)

	api.HandleFunc("/properties", propertyHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}", propertyHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/units", propertyHandler.CreateUnit).Methods(http.MethodPost)

	api.HandleFunc("/visitor-passes", visitorHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/visitor-passes", visitorHandler.ListByProperty).Methods(http.MethodGet)
	api.HandleFunc("/visitor-passes/mine", visitorHandler.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/visitor-passes/{id}/decide", visitorHandler.Decide).Methods(http.MethodPost)
	api.HandleFunc("/visitor-passes/{id}/use", visitorHandler.MarkUsed).Methods(http.MethodPost)

	api.HandleFunc("/deliveries", deliveryHandler.Log).Methods(http.MethodPost)
	api.HandleFunc("/deliveries", deliveryHandler.ListByProperty).Methods(http.MethodGet)
	api.HandleFunc("/deliveries/mine", deliveryHandler.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/deliveries/{id}/pickup", deliveryHandler.MarkPickedUp).Methods(http.MethodPost)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	handler := rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(router))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func configureLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
