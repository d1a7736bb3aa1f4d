package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/AnTengye/contractgen/backend/pkg/logger"
)

// EnvPrefix is prepended to every environment override, e.g. CONTRACTGEN_SERVER_PORT.
const EnvPrefix = "CONTRACTGEN_"

// DefaultImageMarker is the clause instruction that receives the contract's print.
const DefaultImageMarker = "(transcrever ou printar a cláusula do contrato relativa ao pagamento)"

// DefaultMandatoryFields lists the field keys a contract must carry before a document is generated.
var DefaultMandatoryFields = []string{
	"tenant_names",
	"tenant_cpfs",
	"owner_names",
	"owner_cpfs",
	"owner_rgs",
	"owner_addresses",
	"historic_value",
	"updated_value",
}

type Config struct {
	Server      ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	Storage     StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	Store       StoreConfig       `yaml:"store" envPrefix:"STORE_"`
	Office      OfficeConfig      `yaml:"office" envPrefix:"OFFICE_"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet" envPrefix:"SPREADSHEET_"`
	Generation  GenerationConfig  `yaml:"generation" envPrefix:"GENERATION_"`
}

type ServerConfig struct {
	Port        int `yaml:"port" env:"PORT"`
	RateLimit   int `yaml:"rate_limit" env:"RATE_LIMIT"` // requests per minute per client
	MaxUploadMB int `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type StorageConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

func (s StorageConfig) TemplatesDir() string { return filepath.Join(s.Dir, "templates") }
func (s StorageConfig) PrintsDir() string    { return filepath.Join(s.Dir, "prints") }
func (s StorageConfig) OutputsDir() string   { return filepath.Join(s.Dir, "outputs") }
func (s StorageConfig) TempDir() string      { return filepath.Join(s.Dir, "temp") }
func (s StorageConfig) OfficeFile() string   { return filepath.Join(s.Dir, "office.yaml") }

type StoreConfig struct {
	MaxJobs        int `yaml:"max_jobs" env:"MAX_JOBS"`
	RetentionHours int `yaml:"retention_hours" env:"RETENTION_HOURS"`
}

// OfficeConfig describes the law office that signs the generated documents.
type OfficeConfig struct {
	LawyerName  string `yaml:"lawyer_name" json:"advogado_nome" env:"LAWYER_NAME"`
	LawyerOAB   string `yaml:"lawyer_oab" json:"advogado_oab" env:"LAWYER_OAB"`
	Phone       string `yaml:"phone" json:"telefone" env:"PHONE"`
	WhatsApp    string `yaml:"whatsapp" json:"whatsapp" env:"WHATSAPP"`
	Email       string `yaml:"email" json:"email" env:"EMAIL"`
	NoticeEmail string `yaml:"notice_email" json:"email_notificacoes" env:"NOTICE_EMAIL"`
	Address     string `yaml:"address" json:"endereco" env:"ADDRESS"`
	Nationality string `yaml:"nationality" json:"nacionalidade" env:"NATIONALITY"`
	DefaultCity string `yaml:"default_city" json:"cidade_padrao" env:"DEFAULT_CITY"`
}

type SpreadsheetConfig struct {
	BaseSheet    string `yaml:"base_sheet" env:"BASE_SHEET"`
	AddressSheet string `yaml:"address_sheet" env:"ADDRESS_SHEET"`
}

type GenerationConfig struct {
	Connective       string  `yaml:"connective" env:"CONNECTIVE"`
	MissingValue     string  `yaml:"missing_value" env:"MISSING_VALUE"`
	ImageMarker      string  `yaml:"image_marker" env:"IMAGE_MARKER"`
	ImageWidthInches float64 `yaml:"image_width_inches" env:"IMAGE_WIDTH_INCHES"`
	// MandatoryFields are field keys checked before generation.
	MandatoryFields []string `yaml:"mandatory_fields" env:"MANDATORY_FIELDS"`
	// Placeholders maps template tokens to field keys, on top of the built-in catalog.
	Placeholders        map[string]string `yaml:"placeholders"`
	PlaceholderPatterns []string          `yaml:"placeholder_patterns"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	c.applyDefaults()
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 32
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Store.MaxJobs == 0 {
		c.Store.MaxJobs = 100
	}
	if c.Store.RetentionHours == 0 {
		c.Store.RetentionHours = 24
	}
	if c.Office.Nationality == "" {
		c.Office.Nationality = "brasileiro(a)"
	}
	if c.Generation.Connective == "" {
		c.Generation.Connective = "e"
	}
	if c.Generation.MissingValue == "" {
		c.Generation.MissingValue = "N/D"
	}
	if c.Generation.ImageMarker == "" {
		c.Generation.ImageMarker = DefaultImageMarker
	}
	if c.Generation.ImageWidthInches == 0 {
		c.Generation.ImageWidthInches = 5.5
	}
	if len(c.Generation.MandatoryFields) == 0 {
		c.Generation.MandatoryFields = append([]string(nil), DefaultMandatoryFields...)
	}
}

// Validate checks values that would otherwise fail deep inside a job.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Generation.ImageWidthInches < 0 {
		return fmt.Errorf("generation.image_width_inches must be positive")
	}
	for _, p := range c.Generation.PlaceholderPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("generation.placeholder_patterns: %w", err)
		}
	}
	return nil
}
