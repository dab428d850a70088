package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/repository/memstore"
	"github.com/iliyamo/restaurant-pos/internal/router"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", logger.Err(err))
		os.Exit(1)
	}
	log := logger.New("restaurant-pos", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server_exit", logger.Err(err))
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("store_memory", slog.String("note", "data is lost on restart"))
		return memstore.New(), nil
	}
	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return repository.NewMySQLStore(db), nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher service.TicketPublisher = service.NopPublisher{}
	if cfg.Tickets.Enabled {
		publisher = queue.NewPublisher(cfg.Tickets.URL, cfg.Tickets.Queue, log)
		consumer := queue.NewConsumer(cfg.Tickets.URL, cfg.Tickets.Queue, cfg.Tickets.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ticket_consumer_stopped", logger.Err(err))
			}
		}()
	}

	catalog := service.NewMenuCatalog(store, log)
	orders := service.NewOrderStore(store, publisher, log)
	ledger := service.NewTransactionLedger(store, log)
	reports := service.NewReportingEngine(store, service.TaxTableFromConfig(cfg.Tax), cfg.Location, cfg.TopItems)
	staff := service.NewStaff(store, cfg.BcryptCost, log)

	if err := orders.SeedTables(ctx, cfg.TableCount); err != nil {
		return err
	}
	if _, err := catalog.SeedDefaults(ctx); err != nil {
		return err
	}
	if _, err := staff.BootstrapAdmin(ctx, cfg.AdminName, cfg.AdminPIN); err != nil {
		return err
	}

	// nil when Redis is unreachable; cache and limiter then pass through
	rdb := config.NewRedisClient(ctx, log)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, staff, log),
		Menu:      handler.NewMenuHandler(catalog, rdb, router.MenuCacheConfig(cfg.Cache).Prefix, log),
		Orders:    handler.NewOrderHandler(orders, ledger, log),
		Reports:   handler.NewReportHandler(reports, log),
		Employees: handler.NewEmployeeHandler(staff, log),
	}, rdb, log)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env), slog.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
