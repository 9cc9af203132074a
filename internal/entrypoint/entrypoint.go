package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/grocery-share/internal/config"
	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/database/settings"
	http_controllers "github.com/mrlokans/grocery-share/internal/http"
	"github.com/mrlokans/grocery-share/internal/logging"
	"github.com/mrlokans/grocery-share/internal/scheduler"
	"github.com/mrlokans/grocery-share/internal/services"
	"github.com/mrlokans/grocery-share/internal/settingsstore"
	"github.com/mrlokans/grocery-share/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT.
	// SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing enqueues into a closing store.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}

	slog.Info("server exiting")
}

// NewStore builds the connection manager described by cfg. The store is
// opened lazily by the first caller.
func NewStore(cfg *config.Config) *database.Manager {
	return database.NewManager(database.Options{
		Name:        cfg.Database.Name,
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		LogLevel:    logging.GormLevel(logging.ParseLevel(cfg.Global.LogLevel)),
	})
}

func Run(cfg *config.Config, version string) {
	slog.Info("starting grocery-share", "version", version)

	store := NewStore(cfg)
	if err := store.Initialize(context.Background()); err != nil {
		slog.Error("failed to initialize database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	peopleRepo := people.NewRepository(store)
	productsRepo := products.NewRepository(store)
	purchasesRepo := purchases.NewRepository(store)
	preferences := settingsstore.New(settings.NewRepository(store), cfg.UI.DefaultTheme)
	purchaseService := services.NewPurchaseService(purchasesRepo, productsRepo, preferences)

	// Maintenance runs inline unless the task queue is enabled
	enqueue := func(ctx context.Context, task tasks.StoreMaintenanceTask) error {
		return tasks.StoreMaintenanceProcessor(store, productsRepo)(ctx, task)
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		var err error
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			slog.Error("failed to initialize task queue", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				slog.Error("error closing task client", "error", err)
			}
		}()

		taskClient.Register(tasks.NewStoreMaintenanceQueue(store, productsRepo))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		enqueue = func(ctx context.Context, task tasks.StoreMaintenanceTask) error {
			_, err := taskClient.Add(task).Ctx(ctx).Save()
			return err
		}
	}

	maintenance := scheduler.NewMaintenanceScheduler(scheduler.MaintenanceConfig{
		Enabled:             cfg.Maintenance.Enabled,
		Schedule:            cfg.Maintenance.Schedule,
		PruneOrphanProducts: cfg.Maintenance.PruneOrphanProducts,
	}, enqueue)
	if err := maintenance.Start(context.Background()); err != nil {
		slog.Error("failed to start maintenance scheduler", "error", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Health:                    store,
		People:                    peopleRepo,
		Products:                  productsRepo,
		Purchases:                 purchasesRepo,
		Workflow:                  purchaseService,
		Preferences:               preferences,
		Maintenance:               maintenance,
		ProductSearchLimit:        cfg.Products.SearchLimit,
		RecentEstablishmentsLimit: cfg.Purchases.RecentEstablishmentsLimit,
		Version:                   version,
	})

	onShutdown := func(ctx context.Context) {
		maintenance.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
