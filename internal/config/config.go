package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Policy     PolicyConfig     `yaml:"policy" mapstructure:"policy"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	RefData    RefDataConfig    `yaml:"refdata" mapstructure:"refdata"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PolicyConfig points at the policy pack file. An empty path means the
// built-in default pack.
type PolicyConfig struct {
	Pack string `yaml:"pack" mapstructure:"pack"`
}

// NotionConfig holds Notion API credentials and the backlog database ID.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	BacklogDB string `yaml:"backlog_db" mapstructure:"backlog_db"`
}

// RefDataConfig configures reference-assessment workbook import.
type RefDataConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows    int    `yaml:"skip_rows" mapstructure:"skip_rows"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ExportConfig configures workbook and report output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures concurrent item processing.
type BatchConfig struct {
	MaxConcurrentItems int `yaml:"max_concurrent_items" mapstructure:"max_concurrent_items"`
}

// ServerConfig configures the what-if HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. file may be empty,
// in which case an optional ./config.yaml is used.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PRESALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "presales.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent_items", 8)
	v.SetDefault("refdata.skip_rows", 0)
	v.SetDefault("refdata.timeout_secs", 30)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("export.dir", "exports")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
// Mode names match the CLI surface that calls them.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "estimate", "cost", "goalseek", "timeline":
		// Engine commands fall back to the built-in policy pack and a
		// local SQLite file, so nothing is strictly required.
	case "import":
		check(c.Notion.Token != "", "notion.token is required")
		check(c.Notion.BacklogDB != "", "notion.backlog_db is required")
	case "refdata":
		check(c.RefData.URL != "", "refdata.url is required")
	case "sync":
		check(c.Salesforce.ClientID != "", "salesforce.client_id is required")
		check(c.Salesforce.Username != "", "salesforce.username is required")
		check(c.Salesforce.KeyPath != "", "salesforce.key_path is required")
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Batch.MaxConcurrentItems >= 1 && c.Batch.MaxConcurrentItems <= 64,
		"batch.max_concurrent_items must be between 1 and 64")

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
