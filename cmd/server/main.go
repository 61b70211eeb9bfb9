package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvduarte/patrimonio-backend/internal/adapter/crypto"
	"github.com/mvduarte/patrimonio-backend/internal/adapter/httpapi"
	"github.com/mvduarte/patrimonio-backend/internal/adapter/repository/postgres"
	"github.com/mvduarte/patrimonio-backend/internal/config"
	"github.com/mvduarte/patrimonio-backend/internal/domain"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/investment"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/movement"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/networth"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/snapshot"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// 2. Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	investmentRepo := postgres.NewInvestmentRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	movementRepo := postgres.NewMovementRepository(db)
	monthCloseRepo := postgres.NewMonthCloseRepository(db)

	// 3. Encryption capability (optional)
	var cipher domain.Cipher
	if cfg.EncryptionKey != "" {
		aes, err := crypto.NewAESCipher(cfg.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cipher")
		}
		cipher = aes
		log.Info().Msg("End-to-end encryption enabled")
	}

	// 4. Services
	investmentService := investment.NewService(investmentRepo)
	snapshotService := snapshot.NewService(investmentRepo, snapshotRepo, monthCloseRepo, cipher, cfg.DefaultFXRate)
	movementService := movement.NewService(investmentRepo, movementRepo, monthCloseRepo, cipher)
	netWorthService := networth.NewService(investmentRepo, snapshotService, movementService)

	// 5. HTTP server
	server := httpapi.New(httpapi.Config{
		Log:         log,
		Port:        cfg.Port,
		APIToken:    cfg.APIToken,
		DefaultRate: cfg.DefaultFXRate,
		Investments: investmentService,
		Snapshots:   snapshotService,
		Movements:   movementService,
		NetWorth:    netWorthService,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	waitForShutdown(server, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
	log.Info().Msg("HTTP server stopped")
}
