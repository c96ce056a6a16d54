package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/api"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/api/handler"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/api/middleware"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/config"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository/postgresql"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/service"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgresql.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("could not migrate schema")
	}

	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	slotRepo := postgresql.NewPgParkingSlotRepository(db)
	recordRepo := postgresql.NewPgParkingRecordRepository(db)
	userRepo := postgresql.NewPgUserRepository(db)

	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	parkingService := service.NewParkingService(vehicleRepo, slotRepo, recordRepo, wsManager)
	authService := service.NewAuthService(userRepo, cfg)

	if err := parkingService.SeedSlots(ctx); err != nil {
		logrus.WithError(err).Fatal("could not seed parking slots")
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	router := api.SetupRouter(authService, parkingService, authMiddleware, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server forced to shut down")
	}
	logrus.Info("server stopped")
}
