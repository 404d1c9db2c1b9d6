package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/calendar"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

type BacktestEngineV1Config struct {
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	SpreadRatio    float64               `yaml:"spread_ratio" json:"spread_ratio" validate:"gte=0,lt=1" jsonschema:"title=Spread Ratio,description=Full relative bid/ask spread applied against fills,minimum=0"`
	StartTime      time.Time             `yaml:"start_time" json:"start_time" validate:"required" jsonschema:"title=Start Time,description=Start of the backtest period"`
	EndTime        time.Time             `yaml:"end_time" json:"end_time" validate:"required,gtfield=StartTime" jsonschema:"title=End Time,description=End of the backtest period"`
	Granularity    types.Granularity     `yaml:"granularity" json:"granularity" validate:"required,oneof=daily 1m 5m 15m 30m 1h" jsonschema:"title=Granularity,description=Bar interval for the run"`
	ExtendedHours  bool                  `yaml:"extended_hours" json:"extended_hours" jsonschema:"title=Extended Hours,description=Include pre and post market bars for intraday runs"`
	GapPolicy      types.GapPolicy       `yaml:"gap_policy" json:"gap_policy" validate:"required,oneof=forward_fill skip" jsonschema:"title=Gap Policy,description=What to do when an instrument has no bar at a clock timestamp"`
	Symbols        []string              `yaml:"symbols" json:"symbols" validate:"required,min=1,dive,required" jsonschema:"title=Symbols,description=Instruments to load for the run"`
	// Calendar overrides the trading calendar; nil means US equities with
	// regular 09:30 to 16:00 Eastern sessions.
	Calendar *calendar.Config `yaml:"calendar,omitempty" json:"calendar,omitempty" jsonschema:"title=Calendar,description=Trading calendar overrides"`
}

var configValidate = validator.New()

// Validate checks the config and the embedded calendar overrides.
func (c *BacktestEngineV1Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine configuration", err)
	}

	if c.Calendar != nil {
		if err := c.Calendar.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CalendarConfig resolves the calendar overrides, falling back to the
// default US equity calendar.
func (c *BacktestEngineV1Config) CalendarConfig() calendar.Config {
	if c.Calendar != nil {
		return *c.Calendar
	}

	return calendar.DefaultConfig()
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}
			if strings.Contains(t.String(), "types.Granularity") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllGranularities,
				}
			}
			if strings.Contains(t.String(), "types.GapPolicy") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllGapPolicies,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a config suitable for tests: zero commission, no
// spread, daily bars over the given range.
func TestConfig(startTime time.Time, endTime time.Time, symbols ...string) BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: 10000,
		Broker:         commission_fee.BrokerZero,
		SpreadRatio:    0,
		StartTime:      startTime,
		EndTime:        endTime,
		Granularity:    types.GranularityDaily,
		ExtendedHours:  false,
		GapPolicy:      types.GapPolicySkip,
		Symbols:        symbols,
		Calendar:       nil,
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: 0,
		Broker:         commission_fee.BrokerInteractiveBroker,
		SpreadRatio:    0,
		StartTime:      time.Time{},
		EndTime:        time.Time{},
		Granularity:    types.GranularityDaily,
		ExtendedHours:  false,
		GapPolicy:      types.GapPolicyForwardFill,
		Symbols:        nil,
		Calendar:       nil,
	}
}
