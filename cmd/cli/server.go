package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"custodia.io/internal/application/usecase"
	"custodia.io/internal/domain/entity"
	"custodia.io/internal/infrastructure/access"
	"custodia.io/internal/infrastructure/config"
	"custodia.io/internal/infrastructure/events"
	httphandler "custodia.io/internal/infrastructure/http"
	"custodia.io/internal/infrastructure/ledger"
	"custodia.io/internal/infrastructure/logger"
	"custodia.io/internal/infrastructure/metrics"
	"custodia.io/internal/infrastructure/verifier"

	"github.com/spf13/cobra"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run custody API server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		appLogger := logger.NewLogger()

		// Config directory is relative to where the binary is run from
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			configDir = filepath.Join(".", "cmd", "config", serverDir)
		}

		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"custodian", cfg.Custodian.Account,
			"owner", cfg.Custodian.Owner,
			"deposit_policy", cfg.Custodian.DepositPolicy)

		custodian := entity.Account(cfg.Custodian.Account)
		payoutOwners := make([]entity.Account, 0, len(cfg.Custodian.PayoutOwners))
		for _, owner := range cfg.Custodian.PayoutOwners {
			payoutOwners = append(payoutOwners, entity.Account(owner))
		}

		// Infrastructure adapters
		nativeLedger := ledger.NewInMemoryNativeLedger(appLogger)
		tokenLedger := ledger.NewInMemoryTokenLedger(appLogger)
		recorder := events.NewInMemoryRecorder(cfg.Custodian.ReceiptCapacity, appLogger)
		ownerRegistry := access.NewStaticOwnerRegistry(entity.Account(cfg.Custodian.Owner))
		callVerifier := verifier.NewHMACVerifier(
			cfg.Auth.HMACSecret,
			cfg.Auth.TimestampTolerance,
			appLogger,
		)
		metricSet := metrics.New()

		// Use cases
		dispatch := usecase.NewDispatchUseCase(
			custodian,
			nativeLedger,
			recorder,
			usecase.DepositPolicy(cfg.Custodian.DepositPolicy),
			appLogger,
		)
		if len(payoutOwners) > 0 {
			dispatch.Register(usecase.NewDistributeUseCase(custodian, payoutOwners, nativeLedger, appLogger))
		}
		withdrawNative := usecase.NewWithdrawNativeUseCase(custodian, nativeLedger, ownerRegistry, appLogger)
		withdrawToken := usecase.NewWithdrawTokenUseCase(custodian, tokenLedger, ownerRegistry, appLogger)
		balances := usecase.NewCustodyBalanceUseCase(custodian, nativeLedger, tokenLedger)
		receipts := usecase.NewListReceiptsUseCase(recorder)

		handler := httphandler.NewHandler(
			dispatch,
			withdrawNative,
			withdrawToken,
			balances,
			receipts,
			callVerifier,
			metricSet,
			appLogger,
		)

		mux := handler.SetupRoutes()

		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		errChan := make(chan error, 1)

		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server", "address", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
