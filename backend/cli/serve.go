package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/handler"
	"github.com/AnTengye/contractgen/backend/middleware"
	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/service"
)

// janitorInterval is how often finished jobs past retention are swept.
const janitorInterval = 10 * time.Minute

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	ctx := context.Background()
	logger.Info(ctx, "configuration loaded", "storage", cfg.Storage.Dir, "port", cfg.Server.Port)

	for _, dir := range []string{cfg.Storage.TemplatesDir(), cfg.Storage.PrintsDir(), cfg.Storage.OutputsDir(), cfg.Storage.TempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

	jobs := service.NewJobStore(&cfg.Store, cfg.Storage.OutputsDir())
	logger.Info(ctx, "job store initialized", "max_jobs", cfg.Store.MaxJobs, "retention_hours", cfg.Store.RetentionHours)
	router, err := newRouter(cfg, jobs)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // a batch runs inside the request
		IdleTimeout:  120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.Info(ctx, "server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runJanitor(gctx, jobs, janitorInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		return err
	}
	logger.Info(ctx, "server exited gracefully")
	return nil
}

// runJanitor sweeps expired jobs until ctx is done.
func runJanitor(ctx context.Context, jobs *service.JobStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := jobs.Sweep(now); n > 0 {
				logger.Info(ctx, "expired jobs removed", "count", n)
			}
		}
	}
}

// newRouter builds the stores, services and the gin engine.
func newRouter(cfg *config.Config, jobs *service.JobStore) (*gin.Engine, error) {
	office, err := service.NewOfficeStore(cfg.Storage.OfficeFile(), cfg.Office)
	if err != nil {
		return nil, err
	}
	resolver, err := service.NewResolver(&cfg.Generation, office)
	if err != nil {
		return nil, err
	}
	extractor, err := service.NewExtractor(cfg.Generation.PlaceholderPatterns, resolver.Tokens())
	if err != nil {
		return nil, err
	}
	templates, err := service.NewTemplateStore(cfg.Storage.TemplatesDir(), extractor)
	if err != nil {
		return nil, err
	}
	prints, err := service.NewPrintStore(cfg.Storage.PrintsDir())
	if err != nil {
		return nil, err
	}
	runner, err := service.NewBatchRunner(cfg, office, templates, prints, jobs)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	quiet := []string{"/health", "/metrics"}
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(quiet...))
	router.Use(corsMiddleware())
	router.Use(cacheMiddleware())
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute, quiet...))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"jobs":      jobs.Count(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handler.Handlers{
		Templates: handler.NewTemplateHandler(templates),
		Prints:    handler.NewPrintHandler(prints),
		Contracts: handler.NewContractHandler(runner, jobs),
		Config:    handler.NewConfigHandler(office),
	}
	h.Register(router.Group("/api/v1"))
	return router, nil
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheMiddleware keeps API responses out of caches
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
