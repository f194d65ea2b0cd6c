package config

import (
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Footprints   FootprintsConfig   `yaml:"footprints" mapstructure:"footprints"`
	Transactions TransactionsConfig `yaml:"transactions" mapstructure:"transactions"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	PostGIS      PostGISConfig      `yaml:"postgis" mapstructure:"postgis"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// FootprintsConfig describes the building footprint polygon input.
type FootprintsConfig struct {
	Path             string `yaml:"path" mapstructure:"path"`
	Format           string `yaml:"format" mapstructure:"format"` // "geojson", "shapefile" or "" to infer from extension
	DescriptionField string `yaml:"description_field" mapstructure:"description_field"`
	PostalField      string `yaml:"postal_field" mapstructure:"postal_field"` // read the code directly instead of parsing the description
	CRS              string `yaml:"crs" mapstructure:"crs"`                   // e.g. "EPSG:3414"; empty = detect
}

// TransactionsConfig describes the resale transaction table input.
type TransactionsConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`
	PostalColumn string `yaml:"postal_column" mapstructure:"postal_column"`
	Delimiter    string `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet        string `yaml:"sheet" mapstructure:"sheet"` // .xlsx inputs only; empty = first sheet
}

// OutputConfig lists output destinations. Empty paths disable the optional sinks.
type OutputConfig struct {
	CSV       string `yaml:"csv" mapstructure:"csv"`
	GeoJSON   string `yaml:"geojson" mapstructure:"geojson"`
	XLSX      string `yaml:"xlsx" mapstructure:"xlsx"`
	SQLite    string `yaml:"sqlite" mapstructure:"sqlite"`
	PointsCSV string `yaml:"points_csv" mapstructure:"points_csv"`
}

// PostGISConfig configures the optional PostGIS sink.
type PostGISConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOJOIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("footprints.path", "HDBExistingBuilding.geojson")
	v.SetDefault("footprints.format", "")
	v.SetDefault("footprints.description_field", "Description")
	v.SetDefault("footprints.postal_field", "")
	v.SetDefault("footprints.crs", "")
	v.SetDefault("transactions.path", "combined_resale_data.csv")
	v.SetDefault("transactions.postal_column", "postal_code")
	v.SetDefault("transactions.delimiter", ",")
	v.SetDefault("transactions.sheet", "")
	v.SetDefault("output.csv", "transactions_with_lonlat.csv")
	v.SetDefault("output.geojson", "transactions_with_lonlat.geojson")
	v.SetDefault("output.xlsx", "")
	v.SetDefault("output.sqlite", "")
	v.SetDefault("output.points_csv", "")
	v.SetDefault("postgis.database_url", "")
	v.SetDefault("postgis.schema", "public")
	v.SetDefault("postgis.table", "resale_transactions")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that cannot be fixed up by defaults.
func (c *Config) Validate() error {
	if c.Footprints.Path == "" {
		return eris.New("config: footprints.path is required")
	}
	if c.Transactions.Path == "" {
		return eris.New("config: transactions.path is required")
	}
	if c.Transactions.PostalColumn == "" {
		return eris.New("config: transactions.postal_column is required")
	}
	if len([]rune(c.Transactions.Delimiter)) != 1 {
		return eris.Errorf("config: transactions.delimiter must be a single character, got %q", c.Transactions.Delimiter)
	}
	switch c.Footprints.Format {
	case "", "geojson", "shapefile":
	default:
		return eris.Errorf("config: unknown footprints.format %q", c.Footprints.Format)
	}
	return nil
}

// DelimiterRune returns the transaction delimiter as a rune.
func (c TransactionsConfig) DelimiterRune() rune {
	r := []rune(c.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
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

// WriteYAML writes the effective configuration in config.yaml form. The
// database password is masked.
func (c *Config) WriteYAML(w io.Writer) error {
	out := *c
	out.PostGIS.DatabaseURL = redactURL(c.PostGIS.DatabaseURL)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "config: encode yaml")
	}
	return eris.Wrap(enc.Close(), "config: flush yaml")
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
