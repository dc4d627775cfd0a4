package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"nexuios/internal/api"
	"nexuios/internal/auth"
	"nexuios/internal/db"
	"nexuios/internal/metrics"
	"nexuios/internal/repository"
	"nexuios/internal/service"
)

func main() {
	godotenv.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open DB")
	}
	if err := database.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to DB")
	}
	if err := db.Migrate(context.Background(), database); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal().Msg("JWT_SECRET not set")
	}
	assetBase := os.Getenv("ASSET_BASE_URL")
	retentionDays := 90
	if v := os.Getenv("RESERVATION_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retentionDays = n
		}
	}

	metrics.Register()

	roomRepo := repository.NewRoomRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	userRepo := repository.NewUserRepository(database)
	jobRepo := repository.NewJobRepository(database)
	uow := repository.NewUnitOfWork(database)

	bookingSvc := service.NewBookingService(uow, roomRepo, reservationRepo, reservationRepo, logger)
	roomSvc := service.NewRoomService(roomRepo, reservationRepo, bookingSvc, assetBase, logger)
	userSvc := service.NewUserService(userRepo, []byte(jwtSecret), logger)
	jobSvc := service.NewJobService(jobRepo, retentionDays, logger)

	reservationHandler := api.NewReservationHandler(bookingSvc, logger)
	roomHandler := api.NewRoomHandler(roomSvc, logger)
	userHandler := api.NewUserHandler(userSvc, logger)
	requireAuth := auth.Middleware([]byte(jwtSecret))

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(api.RequestID, api.AccessLog(logger))

	// Reservations. Fixed paths go first so mux never captures them as {id}.
	apiRouter.HandleFunc("/reservations/search", reservationHandler.SearchReservations).Methods("GET")
	apiRouter.HandleFunc("/reservations/last", reservationHandler.RecentReservations).Methods("GET")
	apiRouter.HandleFunc("/reservations", reservationHandler.ListReservations).Methods("GET")
	apiRouter.HandleFunc("/reservations", reservationHandler.CreateReservation).Methods("POST")
	apiRouter.HandleFunc("/reservations/{id}", reservationHandler.GetReservation).Methods("GET")
	apiRouter.HandleFunc("/reservations/{id}", reservationHandler.UpdateReservation).Methods("PUT")
	apiRouter.HandleFunc("/reservations/{id}", reservationHandler.DeleteReservation).Methods("DELETE")

	// Rooms
	apiRouter.HandleFunc("/rooms", roomHandler.ListRooms).Methods("GET")
	apiRouter.HandleFunc("/rooms", roomHandler.CreateRoom).Methods("POST")
	apiRouter.HandleFunc("/rooms/{id}", roomHandler.GetRoom).Methods("GET")
	apiRouter.HandleFunc("/rooms/{id}", roomHandler.UpdateRoom).Methods("PUT")
	apiRouter.HandleFunc("/rooms/{id}", roomHandler.DeleteRoom).Methods("DELETE")

	// Users and auth glue
	apiRouter.HandleFunc("/register", userHandler.Register).Methods("POST")
	apiRouter.HandleFunc("/login", userHandler.Login).Methods("POST")
	apiRouter.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	apiRouter.HandleFunc("/deleteUser/{id}", userHandler.DeleteUser).Methods("DELETE")
	apiRouter.Handle("/logout", requireAuth(http.HandlerFunc(userHandler.Logout))).Methods("POST")
	apiRouter.Handle("/user", requireAuth(http.HandlerFunc(userHandler.CurrentUser))).Methods("GET")
	apiRouter.Handle("/authenticated", requireAuth(http.HandlerFunc(userHandler.Authenticated))).Methods("GET")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobSvc.ReleaseIdleRooms(context.Background()); err != nil {
			logger.Error().Err(err).Msg("release idle rooms job failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule release job")
	}
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := jobSvc.PruneOldReservations(context.Background()); err != nil {
			logger.Error().Err(err).Msg("prune reservations job failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule prune job")
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info().Str("port", port).Msg("server running")
	if err := http.ListenAndServe(":"+port, cors(r)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
