// Package config holds this library's ambient configuration: REST
// server settings and the index parameter defaults applied when a
// collection is created without an explicit parameter set. Grounded on
// the teacher's pkg/config/config.go structure (Default()/LoadFromEnv()/
// Validate() triplet, env-var driven), retargeted from gRPC/cache/
// database fields to this domain's HNSW/NAPP/inverted-index knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all ambient configuration.
type Config struct {
	Server ServerConfig
	REST   RESTConfig
	HNSW   HNSWConfig
	NAPP   NAPPConfig
	Invidx InvidxConfig
}

// RESTConfig holds the REST API's own surface: whether it's served at
// all, its listen address (independent of ServerConfig's, so the REST
// API can be exposed on a different host/port than the rest of the
// process's listeners), and its auth/rate-limit/CORS knobs.
type RESTConfig struct {
	Enabled bool
	Host    string
	Port    int

	CORSEnabled bool
	CORSOrigins []string

	AuthEnabled bool
	JWTSecret   string
	PublicPaths []string
	AdminPaths  []string

	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
	RateLimitPerIP   bool
	RateLimitPerUser bool
	RateLimitGlobal  bool
}

// ServerConfig holds process-level server settings (listener address,
// connection and timeout limits, TLS). The REST API's own listener is
// configured separately by RESTConfig.
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// HNSWConfig holds the default HNSW index parameters (§4.3/§6) applied
// when a collection doesn't override them via pkg/factory.IndexTimeParams.
type HNSWConfig struct {
	M                  int  // Neighbors per node per layer (default: 16)
	EfConstruction     int  // Build-time beam width (default: 200)
	DefaultEfSearch    int  // Search-time beam width (default: 50)
	DelaunayType       int  // Neighbor-pruning heuristic, 0-3 (default: 2)
	Post               int  // Refinement passes after build, 0-2 (default: 0)
	SkipOptimizedIndex bool // Skip the cache-compact post-build layout
}

// NAPPConfig holds the default NAPP index parameters (§4.7/§6).
type NAPPConfig struct {
	NumPivot        int     // Sampled pivots (default: 32)
	NumPrefix       int     // Index-time pivot-neighborhood size (default: 8)
	ChunkIndexSize  int     // Objects per chunk (default: 1024)
	NumPrefixSearch int     // Query-time pivot-neighborhood size (default: 16)
	MinTimes        int     // Minimum pivot overlap to become a candidate (default: 2)
	DbScanFrac      float64 // Fraction of the dataset scanned per query (default: 0.05)
}

// InvidxConfig holds the default Block-Max WAND parameter (§4.6/§6).
type InvidxConfig struct {
	BlockSize int // blk_size (default: 64)
}

// Default returns the library's documented default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		REST: RESTConfig{
			Enabled:          true,
			Host:             "0.0.0.0",
			Port:             8081,
			CORSEnabled:      true,
			CORSOrigins:      []string{"*"},
			AuthEnabled:      false,
			PublicPaths:      []string{"/v1/health", "/metrics"},
			RateLimitEnabled: true,
			RateLimitPerSec:  100,
			RateLimitBurst:   200,
			RateLimitPerIP:   true,
		},
		HNSW: HNSWConfig{
			M:               16,
			EfConstruction:  200,
			DefaultEfSearch: 50,
			DelaunayType:    2,
			Post:            0,
		},
		NAPP: NAPPConfig{
			NumPivot:        32,
			NumPrefix:       8,
			ChunkIndexSize:  1024,
			NumPrefixSearch: 16,
			MinTimes:        2,
			DbScanFrac:      0.05,
		},
		Invidx: InvidxConfig{
			BlockSize: 64,
		},
	}
}

// LoadFromEnv loads configuration from environment variables, falling
// back to Default() for anything unset or unparsable.
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("SIMSEARCH_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SIMSEARCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("SIMSEARCH_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("SIMSEARCH_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("SIMSEARCH_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("SIMSEARCH_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("SIMSEARCH_TLS_KEY")
	}

	if m := os.Getenv("SIMSEARCH_HNSW_M"); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			cfg.HNSW.M = v
		}
	}
	if ef := os.Getenv("SIMSEARCH_HNSW_EF_CONSTRUCTION"); ef != "" {
		if v, err := strconv.Atoi(ef); err == nil {
			cfg.HNSW.EfConstruction = v
		}
	}
	if ef := os.Getenv("SIMSEARCH_HNSW_EF_SEARCH"); ef != "" {
		if v, err := strconv.Atoi(ef); err == nil {
			cfg.HNSW.DefaultEfSearch = v
		}
	}
	if dt := os.Getenv("SIMSEARCH_HNSW_DELAUNAY_TYPE"); dt != "" {
		if v, err := strconv.Atoi(dt); err == nil {
			cfg.HNSW.DelaunayType = v
		}
	}
	if post := os.Getenv("SIMSEARCH_HNSW_POST"); post != "" {
		if v, err := strconv.Atoi(post); err == nil {
			cfg.HNSW.Post = v
		}
	}
	if skip := os.Getenv("SIMSEARCH_HNSW_SKIP_OPTIMIZED_INDEX"); skip == "true" {
		cfg.HNSW.SkipOptimizedIndex = true
	}

	if v := os.Getenv("SIMSEARCH_NAPP_NUM_PIVOT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NAPP.NumPivot = n
		}
	}
	if v := os.Getenv("SIMSEARCH_NAPP_NUM_PREFIX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NAPP.NumPrefix = n
		}
	}
	if v := os.Getenv("SIMSEARCH_NAPP_CHUNK_INDEX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NAPP.ChunkIndexSize = n
		}
	}
	if v := os.Getenv("SIMSEARCH_NAPP_NUM_PREFIX_SEARCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NAPP.NumPrefixSearch = n
		}
	}
	if v := os.Getenv("SIMSEARCH_NAPP_MIN_TIMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NAPP.MinTimes = n
		}
	}
	if v := os.Getenv("SIMSEARCH_NAPP_DB_SCAN_FRAC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.NAPP.DbScanFrac = f
		}
	}

	if v := os.Getenv("SIMSEARCH_INVIDX_BLOCK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Invidx.BlockSize = n
		}
	}

	if v := os.Getenv("SIMSEARCH_REST_ENABLED"); v != "" {
		cfg.REST.Enabled = v == "true"
	}
	if v := os.Getenv("SIMSEARCH_REST_HOST"); v != "" {
		cfg.REST.Host = v
	}
	if v := os.Getenv("SIMSEARCH_REST_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.REST.Port = n
		}
	}
	if v := os.Getenv("SIMSEARCH_REST_CORS_ENABLED"); v != "" {
		cfg.REST.CORSEnabled = v == "true"
	}
	if v := os.Getenv("SIMSEARCH_REST_AUTH_ENABLED"); v != "" {
		cfg.REST.AuthEnabled = v == "true"
	}
	if v := os.Getenv("SIMSEARCH_REST_JWT_SECRET"); v != "" {
		cfg.REST.JWTSecret = v
	}
	if v := os.Getenv("SIMSEARCH_REST_RATE_LIMIT_ENABLED"); v != "" {
		cfg.REST.RateLimitEnabled = v == "true"
	}
	if v := os.Getenv("SIMSEARCH_REST_RATE_LIMIT_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.REST.RateLimitPerSec = f
		}
	}
	if v := os.Getenv("SIMSEARCH_REST_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.REST.RateLimitBurst = n
		}
	}

	return cfg
}

// Validate checks if the configuration is valid, per §7's ConfigError
// policy: reject out-of-range values rather than silently clamping.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	if c.HNSW.M < 2 || c.HNSW.M > 100 {
		return fmt.Errorf("invalid HNSW M: %d (recommended: 16)", c.HNSW.M)
	}
	if c.HNSW.EfConstruction < 10 {
		return fmt.Errorf("invalid HNSW efConstruction: %d (must be >= 10)", c.HNSW.EfConstruction)
	}
	if c.HNSW.DelaunayType < 0 || c.HNSW.DelaunayType > 3 {
		return fmt.Errorf("invalid HNSW delaunay_type: %d (must be 0-3)", c.HNSW.DelaunayType)
	}
	if c.HNSW.Post < 0 || c.HNSW.Post > 2 {
		return fmt.Errorf("invalid HNSW post: %d (must be 0-2)", c.HNSW.Post)
	}

	if c.NAPP.NumPivot < 1 {
		return fmt.Errorf("invalid NAPP num_pivot: %d (must be > 0)", c.NAPP.NumPivot)
	}
	if c.NAPP.NumPrefix < 1 || c.NAPP.NumPrefix > c.NAPP.NumPivot {
		return fmt.Errorf("invalid NAPP num_prefix: %d (must be in [1, num_pivot])", c.NAPP.NumPrefix)
	}
	if c.NAPP.ChunkIndexSize < 1 {
		return fmt.Errorf("invalid NAPP chunk_index_size: %d (must be > 0)", c.NAPP.ChunkIndexSize)
	}
	if c.NAPP.DbScanFrac <= 0 || c.NAPP.DbScanFrac > 1 {
		return fmt.Errorf("invalid NAPP db_scan_frac: %v (must be in (0, 1])", c.NAPP.DbScanFrac)
	}

	if c.Invidx.BlockSize < 1 {
		return fmt.Errorf("invalid invidx block_size: %d (must be > 0)", c.Invidx.BlockSize)
	}

	if c.REST.Enabled {
		if c.REST.Port < 1 || c.REST.Port > 65535 {
			return fmt.Errorf("invalid REST port: %d (must be 1-65535)", c.REST.Port)
		}
		if c.REST.AuthEnabled && c.REST.JWTSecret == "" {
			return fmt.Errorf("REST auth enabled but no JWT secret configured")
		}
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the REST server's listen address (host:port).
func (c *RESTConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
