package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/nikora-inc/promo-engine/pkg/services"
)

// Config holds all configuration for promo-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables override YAML values. The file is
// optional — the defaults reproduce the locked-column behavior of the
// production order files.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MaxUploadBytes caps the size of one multipart upload request.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"33554432"`

	// Columns are the locked column selections. Incoming order files are
	// non-changeable; we adapt on our side.
	Columns ColumnsConfig `yaml:"columns"`

	// Matching controls key comparison policies.
	Matching MatchingConfig `yaml:"matching"`

	// Files points at the local default schedule and mapping tables.
	Files FilesConfig `yaml:"files"`

	// Export holds delivery shaping settings.
	Export ExportConfig `yaml:"export"`
}

// ColumnsConfig selects the pipeline's columns by header name. Defaults
// match the production order, schedule, and Georgian mapping files.
type ColumnsConfig struct {
	OrderBarcode    string `yaml:"order_barcode" env:"ORDER_BARCODE_COLUMN" env-default:"Код EAN/UPC"`
	OrderShop       string `yaml:"order_shop" env:"ORDER_SHOP_COLUMN" env-default:"Завод"`
	ScheduleShop    string `yaml:"schedule_shop" env:"SCHEDULE_SHOP_COLUMN" env-default:"shop_code"`
	ScheduleWeekday string `yaml:"schedule_weekday" env:"SCHEDULE_WEEKDAY_COLUMN" env-default:"allowed_weekday"`
	MappingNew      string `yaml:"mapping_new" env:"MAPPING_NEW_COLUMN" env-default:"ძირითადი შტრიხკოდი"`
	MappingOld      string `yaml:"mapping_old" env:"MAPPING_OLD_COLUMN" env-default:"შტრიხკოდი"`
}

// MatchingConfig holds the key comparison policies. Shop codes commonly
// vary in casing, so shop matching is case-insensitive by default;
// barcodes are compared verbatim after trimming.
type MatchingConfig struct {
	ShopCaseInsensitive    bool `yaml:"shop_case_insensitive" env:"SHOP_CASE_INSENSITIVE" env-default:"true"`
	BarcodeCaseInsensitive bool `yaml:"barcode_case_insensitive" env:"BARCODE_CASE_INSENSITIVE" env-default:"false"`
}

// FilesConfig points at the local default tables. When a path is empty the
// standard candidates (working directory, then ./config/) are tried.
type FilesConfig struct {
	BarcodeMapPath   string `yaml:"barcode_map_path" env:"BARCODE_MAP_PATH" env-default:""`
	ShopSchedulePath string `yaml:"shop_schedule_path" env:"SHOP_SCHEDULE_PATH" env-default:""`
}

// ExportConfig holds delivery shaping settings.
type ExportConfig struct {
	// DropColumnsStr is a comma-separated list of columns removed from
	// exported files when present.
	DropColumnsStr string `yaml:"drop_columns" env:"EXPORT_DROP_COLUMNS" env-default:"Дата документа,მაღაზიის მისამართი"`

	// DropColumns is parsed from DropColumnsStr at load time.
	DropColumns []string `yaml:"-"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; environment variables
// and defaults apply. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.parseComplexFields()
	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() {
	c.Export.DropColumns = splitList(c.Export.DropColumnsStr)
}

// PipelineConfig translates the loaded configuration into the per-run
// column selections and matching policies.
func (c *Config) PipelineConfig() services.PipelineConfig {
	return services.PipelineConfig{
		OrderBarcodeColumn:    c.Columns.OrderBarcode,
		OrderShopColumn:       c.Columns.OrderShop,
		ScheduleShopColumn:    c.Columns.ScheduleShop,
		ScheduleWeekdayColumn: c.Columns.ScheduleWeekday,
		MappingNewColumn:      c.Columns.MappingNew,
		MappingOldColumn:      c.Columns.MappingOld,
		BarcodeMatch:          services.MatchPolicy{CaseInsensitive: c.Matching.BarcodeCaseInsensitive},
		ShopMatch:             services.MatchPolicy{CaseInsensitive: c.Matching.ShopCaseInsensitive},
	}
}

// BarcodeMapCandidates returns the paths tried for the local barcode map.
func (c *Config) BarcodeMapCandidates() []string {
	if c.Files.BarcodeMapPath != "" {
		return []string{c.Files.BarcodeMapPath}
	}
	return []string{"barcode_map.xlsx", "config/barcode_map.xlsx"}
}

// ShopScheduleCandidates returns the paths tried for the local schedule.
func (c *Config) ShopScheduleCandidates() []string {
	if c.Files.ShopSchedulePath != "" {
		return []string{c.Files.ShopSchedulePath}
	}
	return []string{"shop_schedule.xlsx", "config/shop_schedule.xlsx"}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
