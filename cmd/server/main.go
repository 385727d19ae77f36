package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/gdg-garage/hotel-pms/internal/availability"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/config"
	"github.com/gdg-garage/hotel-pms/internal/database"
	"github.com/gdg-garage/hotel-pms/internal/handlers"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/gdg-garage/hotel-pms/internal/notifier"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("Invalid hotel timezone")
	}

	// Connect to Database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	rdb := availability.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	calendar := availability.NewCalendar(db, rdb, cfg.AvailabilityCacheTTL, log)

	bookings := booking.NewService(db,
		booking.WithNotifier(buildNotifier(cfg, log)),
		booking.WithInvalidator(calendar),
		booking.WithLogger(log),
		booking.WithLocation(loc),
	)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, log)

	// Initialize Router
	r := chi.NewRouter()
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Register Routes
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         authHandler,
		Bookings:     handlers.NewBookingHandler(bookings, log),
		Catalog:      handlers.NewCatalogHandler(db, log),
		Availability: handlers.NewAvailabilityHandler(calendar, loc, log),
	}, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start Server
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if rdb != nil {
		rdb.Close()
	}
}

// buildNotifier fans booking events out to every configured channel. With
// nothing configured events are dropped.
func buildNotifier(cfg *config.Config, log *logrus.Logger) notifier.Notifier {
	var targets notifier.Multi

	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.WithError(err).Warn("Discord notifier not initialized")
		} else {
			targets = append(targets, notifier.NewDiscordNotifier(session, cfg.DiscordChannelID, log))
		}
	}
	if cfg.AMQPURL != "" {
		targets = append(targets, notifier.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, log))
	}

	if len(targets) == 0 {
		return notifier.Nop{}
	}
	return targets
}
