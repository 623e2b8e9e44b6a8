// Package config loads and validates the YAML pipeline configuration used by the CLI.
package config

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/version"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the pipeline configuration.
type Config struct {
	Version       string                     `yaml:"version" json:"version" jsonschema:"title=Version,description=Config format version (semver),required" validate:"required"`
	DefaultPeriod string                     `yaml:"default_period" json:"default_period" jsonschema:"title=Default Period,description=Period used by registrations without one (e.g. 1m or daily),required" validate:"required"`
	WarmUp        bool                       `yaml:"warm_up" json:"warm_up" jsonschema:"title=Warm Up,description=Warm up registrations that do not set warm_up themselves"`
	Padding       int                        `yaml:"padding" json:"padding" jsonschema:"title=Padding,description=Extra history bars requested on top of each indicator minimum,minimum=0" validate:"min=0"`
	Now           optional.Option[time.Time] `yaml:"-" json:"now" jsonschema:"title=Now,description=Fixed clock for replays; defaults to the wall clock"`
	History       HistoryConfig              `yaml:"history" json:"history" jsonschema:"title=History,description=Historical data source used for warm-up,required" validate:"required"`
	Sink          SinkConfig                 `yaml:"sink" json:"sink" jsonschema:"title=Sink,description=Closed bar persistence"`
	Metrics       MetricsConfig              `yaml:"metrics" json:"metrics" jsonschema:"title=Metrics,description=Prometheus endpoint"`
	Registrations []Registration             `yaml:"registrations" json:"registrations" jsonschema:"title=Registrations,description=Indicators to register,required" validate:"required,min=1,dive"`
}

// HistoryConfig selects the warm-up data source.
type HistoryConfig struct {
	Kind      string `yaml:"kind" json:"kind" jsonschema:"title=Kind,required,enum=memory,enum=duckdb,enum=polygon,enum=binance" validate:"required,oneof=memory duckdb polygon binance"`
	Path      string `yaml:"path" json:"path" jsonschema:"title=Path,description=Parquet file read by the duckdb source" validate:"required_if=Kind duckdb"`
	APIKey    string `yaml:"api_key" json:"api_key" jsonschema:"title=API Key,description=Polygon.io API key" validate:"required_if=Kind polygon"`
	Aggregate bool   `yaml:"aggregate" json:"aggregate" jsonschema:"title=Aggregate,description=Pre-aggregate rows to the period inside DuckDB"`
	Calendar  string `yaml:"calendar" json:"calendar" jsonschema:"title=Calendar,description=Exchange MIC (e.g. xnys) for calendar aware lookback"`
}

// SinkConfig enables closed bar persistence.
type SinkConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled"`
	Path    string `yaml:"path" json:"path" jsonschema:"title=Path,description=Parquet file the closed bars are exported to"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr" jsonschema:"title=Address,description=Listen address of the /metrics endpoint (e.g. :9090)" validate:"omitempty,hostname_port"`
}

// Registration describes one indicator registration.
type Registration struct {
	Name       string                  `yaml:"name" json:"name" jsonschema:"title=Name,description=Display name; generated when empty"`
	Exchange   string                  `yaml:"exchange" json:"exchange" jsonschema:"title=Exchange,required" validate:"required"`
	Symbol     string                  `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,required" validate:"required"`
	AssetClass string                  `yaml:"asset_class" json:"asset_class" jsonschema:"title=Asset Class,required,enum=equity,enum=crypto,enum=forex,enum=future,enum=option" validate:"required,oneof=equity crypto forex future option"`
	Indicator  string                  `yaml:"indicator" json:"indicator" jsonschema:"title=Indicator,description=Catalog kind (e.g. sma or vwap),required" validate:"required"`
	Params     map[string]any          `yaml:"params" json:"params" jsonschema:"title=Params,description=Indicator parameters"`
	Period     optional.Option[string] `yaml:"-" json:"period" jsonschema:"title=Period,description=Bar period; defaults to default_period"`
	Selector   string                  `yaml:"selector" json:"selector" jsonschema:"title=Selector,description=Bar field fed to the indicator (default close)"`
	WarmUp     optional.Option[bool]   `yaml:"-" json:"warm_up" jsonschema:"title=Warm Up,description=Overrides the global warm_up flag"`
}

// UnmarshalYAML implements custom unmarshaling for the optional fields of Config,
// which yaml cannot decode directly.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config

	var raw struct {
		plain `yaml:",inline"`
		Now   *time.Time `yaml:"now"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = Config(raw.plain)
	if raw.Now != nil {
		c.Now = optional.Some(*raw.Now)
	}

	return nil
}

// UnmarshalYAML implements custom unmarshaling for the optional fields of Registration.
func (r *Registration) UnmarshalYAML(value *yaml.Node) error {
	type plain Registration

	var raw struct {
		plain  `yaml:",inline"`
		Period *string `yaml:"period"`
		WarmUp *bool   `yaml:"warm_up"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	*r = Registration(raw.plain)
	if raw.Period != nil {
		r.Period = optional.Some(*raw.Period)
	}

	if raw.WarmUp != nil {
		r.WarmUp = optional.Some(*raw.WarmUp)
	}

	return nil
}

// Instrument returns the instrument the registration targets.
func (r Registration) Instrument() types.Instrument {
	return types.NewInstrument(r.Exchange, r.Symbol, types.AssetClass(r.AssetClass))
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints, the version and every period and selector.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "unsupported config version", err)
	}

	if _, err := period.Parse(c.DefaultPeriod); err != nil {
		return err
	}

	for i, reg := range c.Registrations {
		if reg.Period.IsSome() {
			if _, err := period.Parse(reg.Period.Unwrap()); err != nil {
				return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "registration %d", i)
			}
		}

		if reg.Selector != "" {
			if _, err := selector.ByName(reg.Selector); err != nil {
				return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "registration %d", i)
			}
		}
	}

	return nil
}

// DefaultKey returns the parsed default period.
func (c *Config) DefaultKey() period.Key {
	return period.MustParse(c.DefaultPeriod)
}

// HistorySource returns the history.Config matching the history section.
func (c *Config) HistorySource() history.Config {
	return history.Config{
		Kind:      history.Kind(c.History.Kind),
		Path:      c.History.Path,
		APIKey:    c.History.APIKey,
		Aggregate: c.History.Aggregate,
	}
}

// GenerateSchema generates a JSON schema for Config.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			name := t.String()

			switch {
			case strings.HasPrefix(name, "optional.Option[time.Time]"):
				return &jsonschema.Schema{Type: "string", Format: "date-time"}
			case strings.HasPrefix(name, "optional.Option[string]"):
				return &jsonschema.Schema{Type: "string"}
			case strings.HasPrefix(name, "optional.Option[bool]"):
				return &jsonschema.Schema{Type: "boolean"}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "consolidator-config"
	schema.Description = "Configuration schema for the consolidation pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates the JSON schema as an indented string.
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
