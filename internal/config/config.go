package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/stadslucht/pm25-extract/internal/airdata"
	"github.com/stadslucht/pm25-extract/internal/pipeline"
)

var validate = validator.New()

// AppConfig is built once at startup and passed down through the
// orchestrator; nothing reads configuration from ambient globals after
// Load returns.
type AppConfig struct {
	// Datastore secrets; the run aborts without them.
	ResourceID string `validate:"required"`
	APIToken   string `validate:"required"`

	// BaseURL of the datastore SQL endpoint.
	BaseURL string `validate:"required,url"`

	// Name of the data collection, used in output file names.
	Name string `validate:"required"`

	// OutputDir receives cache entries, extracts and the workbook.
	OutputDir string `validate:"required"`

	// Windows to extract, in order.
	Windows []airdata.Window `validate:"required,min=1,dive"`

	// Areas to filter by, in order.
	Areas []pipeline.AreaSource `validate:"required,min=1"`

	// CacheBackend selects where window results are memoized.
	CacheBackend string `validate:"oneof=file redis"`

	// Redis connection, used only when CacheBackend is "redis".
	RedisAddr string
	RedisPass string

	// HTTPTimeout bounds each outbound datastore call.
	HTTPTimeout time.Duration

	// ExtractInterval re-runs the pipeline periodically when positive;
	// zero means run once and exit.
	ExtractInterval time.Duration
}

// defaultWindows are the spring measurement campaigns the extraction
// targets when EXTRACT_WINDOWS is not set.
var defaultWindows = []airdata.Window{
	{Start: "2022-04-01", End: "2022-05-31"},
	{Start: "2023-04-01", End: "2023-05-31"},
	{Start: "2024-04-01", End: "2024-05-31"},
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		ResourceID:   os.Getenv("CKAN_RESOURCE_ID"),
		APIToken:     os.Getenv("CKAN_API_TOKEN"),
		BaseURL:      getenvDefault("CKAN_SQL_URL", "https://ckan.dataplatform.nl/api/3/action/datastore_search_sql"),
		Name:         getenvDefault("EXTRACT_NAME", "highfive_area"),
		OutputDir:    getenvDefault("OUTPUT_DIR", "data3"),
		CacheBackend: getenvDefault("CACHE_BACKEND", "file"),
		RedisAddr:    getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "60s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if v := os.Getenv("EXTRACT_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXTRACT_INTERVAL: %w", err)
		}
		cfg.ExtractInterval = interval
	}

	windows, err := loadWindows()
	if err != nil {
		return nil, err
	}
	cfg.Windows = windows

	areas, err := loadAreas(cfg.Name)
	if err != nil {
		return nil, err
	}
	cfg.Areas = areas

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range cfg.Windows {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadWindows parses EXTRACT_WINDOWS, a comma list of start..end date pairs
// such as "2022-04-01..2022-05-31,2023-04-01..2023-05-31".
func loadWindows() ([]airdata.Window, error) {
	v := os.Getenv("EXTRACT_WINDOWS")
	if v == "" {
		return defaultWindows, nil
	}
	var windows []airdata.Window
	for _, part := range strings.Split(v, ",") {
		bounds := strings.SplitN(strings.TrimSpace(part), "..", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid window %q in EXTRACT_WINDOWS", part)
		}
		windows = append(windows, airdata.Window{Start: bounds[0], End: bounds[1]})
	}
	return windows, nil
}

// loadAreas parses EXTRACT_AREAS, a comma list of name=geojson-path pairs.
// Without it, the single default area named after the collection is used.
func loadAreas(name string) ([]pipeline.AreaSource, error) {
	v := os.Getenv("EXTRACT_AREAS")
	if v == "" {
		return []pipeline.AreaSource{{Name: name, Path: "data/" + name + ".geojson"}}, nil
	}
	var areas []pipeline.AreaSource
	for _, part := range strings.Split(v, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid area %q in EXTRACT_AREAS", part)
		}
		areas = append(areas, pipeline.AreaSource{Name: pair[0], Path: pair[1]})
	}
	return areas, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
