package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/api/rest"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/api/rest/middleware"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/collection"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/config"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "REST host (overrides config/env)")
		port        = flag.Int("port", 0, "REST port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("simsearch server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.REST.Host = *host
	}
	if *port > 0 {
		cfg.REST.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(observability.INFO, os.Stdout)
	observability.SetGlobalLogger(log)
	metrics := observability.NewMetrics()

	manager := collection.NewManager()

	printStartupInfo(cfg)

	if !cfg.REST.Enabled {
		log.Info("REST API disabled, nothing to serve; exiting")
		return
	}

	restConfig := rest.Config{
		Host:        cfg.REST.Host,
		Port:        cfg.REST.Port,
		CORSEnabled: cfg.REST.CORSEnabled,
		CORSOrigins: cfg.REST.CORSOrigins,
		Auth: middleware.AuthConfig{
			Enabled:     cfg.REST.AuthEnabled,
			JWTSecret:   cfg.REST.JWTSecret,
			PublicPaths: cfg.REST.PublicPaths,
			AdminPaths:  cfg.REST.AdminPaths,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:         cfg.REST.RateLimitEnabled,
			RequestsPerSec:  cfg.REST.RateLimitPerSec,
			Burst:           cfg.REST.RateLimitBurst,
			PerIP:           cfg.REST.RateLimitPerIP,
			PerUser:         cfg.REST.RateLimitPerUser,
			GlobalLimit:     cfg.REST.RateLimitGlobal,
		},
	}

	server := rest.NewServer(restConfig, manager, metrics, log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	log.Info("server is ready, press Ctrl+C to stop")
	select {
	case sig := <-sigChan:
		log.Infof("received signal: %v", sig)
	case err := <-errChan:
		log.Errorf("server error: %v", err)
	}

	log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Errorf("error stopping REST server: %v", err)
	}

	log.Info("server stopped, goodbye")
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║   similarity-search core — HNSW, sparse inverted index,    ║
║   and NAPP pivot-neighborhood search over one Space         ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("╔════════════════════════════════════════════════════════╗")
	fmt.Println("║               REST API Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.REST.Enabled)
	if cfg.REST.Enabled {
		fmt.Printf("║ Address:          %-35s ║\n", cfg.REST.Address())
		fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.REST.AuthEnabled)
		fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.REST.CORSEnabled)
		fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.REST.RateLimitEnabled)
		if cfg.REST.RateLimitEnabled {
			fmt.Printf("║ Rate:             %-35s ║\n", fmt.Sprintf("%.1f req/s (burst: %d)", cfg.REST.RateLimitPerSec, cfg.REST.RateLimitBurst))
		}
	}
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               HNSW Defaults                            ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ M:                %-35d ║\n", cfg.HNSW.M)
	fmt.Printf("║ efConstruction:   %-35d ║\n", cfg.HNSW.EfConstruction)
	fmt.Printf("║ efSearch:         %-35d ║\n", cfg.HNSW.DefaultEfSearch)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               NAPP Defaults                            ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ numPivot:         %-35d ║\n", cfg.NAPP.NumPivot)
	fmt.Printf("║ numPrefix:        %-35d ║\n", cfg.NAPP.NumPrefix)
	fmt.Printf("║ dbScanFrac:       %-35v ║\n", cfg.NAPP.DbScanFrac)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("simsearch server - similarity-search core over HNSW/inverted-index/NAPP")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  simsearch-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        REST host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        REST port (default: 8081)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SIMSEARCH_REST_HOST              REST host")
	fmt.Println("  SIMSEARCH_REST_PORT              REST port")
	fmt.Println("  SIMSEARCH_REST_AUTH_ENABLED       Enable JWT auth (true/false)")
	fmt.Println("  SIMSEARCH_REST_JWT_SECRET         JWT signing secret")
	fmt.Println("  SIMSEARCH_REST_RATE_LIMIT_ENABLED Enable rate limiting (true/false)")
	fmt.Println("  SIMSEARCH_HNSW_M                  HNSW M parameter")
	fmt.Println("  SIMSEARCH_HNSW_EF_CONSTRUCTION     HNSW efConstruction")
	fmt.Println("  SIMSEARCH_NAPP_NUM_PIVOT           NAPP numPivot")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  simsearch-server")
	fmt.Println("  simsearch-server -port 8081")
	fmt.Println("  SIMSEARCH_REST_PORT=8081 simsearch-server")
	fmt.Println()
}
