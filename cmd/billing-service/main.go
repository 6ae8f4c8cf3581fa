package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/auth"
	"github.com/jaemin/maintbilling/internal/billing"
	"github.com/jaemin/maintbilling/internal/config"
	"github.com/jaemin/maintbilling/internal/db"
	"github.com/jaemin/maintbilling/internal/excel"
	httphandler "github.com/jaemin/maintbilling/internal/http"
	"github.com/jaemin/maintbilling/internal/http/middleware"
	"github.com/jaemin/maintbilling/internal/logger"
	"github.com/jaemin/maintbilling/internal/pdf"
	"github.com/jaemin/maintbilling/internal/repository"
	"github.com/jaemin/maintbilling/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	vatRate, err := decimal.NewFromString(cfg.Billing.VATRate)
	if err != nil {
		log.Fatal().Err(err).Str("vat_rate", cfg.Billing.VATRate).Msg("invalid BILLING_VAT_RATE")
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	billingRepo := repository.NewBillingRepository(database)

	policy := billing.Policy{
		VATRate:                vatRate,
		SuddenChangePercent:    cfg.Billing.SuddenChangePercent,
		ExpiryLookaheadDays:    cfg.Billing.ExpiryLookaheadDays,
		BusinessDaySearchLimit: cfg.Billing.BusinessDaySearchLimit,
		DefaultIssueDay:        cfg.Billing.DefaultIssueDay,
	}
	engine := billing.NewEngine(policy)

	billingService := service.NewBillingService(
		contractRepo,
		billingRepo,
		engine,
		policy,
		excel.NewGenerator(),
		excel.NewImporter(),
		pdf.NewGenerator(),
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billingService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
