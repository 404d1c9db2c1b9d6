package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) validConfig() BacktestEngineV1Config {
	return TestConfig(
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
		"AAPL",
	)
}

func (s *ConfigTestSuite) TestValidConfig() {
	config := s.validConfig()
	s.Require().NoError(config.Validate())
}

func (s *ConfigTestSuite) TestValidateRejectsBadConfigs() {
	tests := []struct {
		name   string
		mutate func(*BacktestEngineV1Config)
	}{
		{"zero capital", func(c *BacktestEngineV1Config) { c.InitialCapital = 0 }},
		{"negative capital", func(c *BacktestEngineV1Config) { c.InitialCapital = -100 }},
		{"no symbols", func(c *BacktestEngineV1Config) { c.Symbols = nil }},
		{"empty symbol", func(c *BacktestEngineV1Config) { c.Symbols = []string{""} }},
		{"end before start", func(c *BacktestEngineV1Config) { c.EndTime = c.StartTime.AddDate(0, 0, -1) }},
		{"unknown granularity", func(c *BacktestEngineV1Config) { c.Granularity = "2m" }},
		{"unknown gap policy", func(c *BacktestEngineV1Config) { c.GapPolicy = "interpolate" }},
		{"spread ratio too large", func(c *BacktestEngineV1Config) { c.SpreadRatio = 1.5 }},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			config := s.validConfig()
			tc.mutate(&config)

			err := config.Validate()
			s.Require().Error(err)
			s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (s *ConfigTestSuite) TestUnmarshalYAML() {
	raw := `
initial_capital: 50000
broker: interactive_broker
spread_ratio: 0.001
start_time: 2024-01-02T00:00:00Z
end_time: 2024-06-28T00:00:00Z
granularity: daily
gap_policy: forward_fill
symbols:
  - AAPL
  - MSFT
`

	var config BacktestEngineV1Config
	s.Require().NoError(yaml.Unmarshal([]byte(raw), &config))
	s.Require().NoError(config.Validate())

	s.Equal(50000.0, config.InitialCapital)
	s.Equal(commission_fee.BrokerInteractiveBroker, config.Broker)
	s.Equal(types.GranularityDaily, config.Granularity)
	s.Equal(types.GapPolicyForwardFill, config.GapPolicy)
	s.Equal([]string{"AAPL", "MSFT"}, config.Symbols)
	s.False(config.ExtendedHours)
}

func (s *ConfigTestSuite) TestCalendarConfigDefaults() {
	config := s.validConfig()

	calendarConfig := config.CalendarConfig()
	s.Equal("America/New_York", calendarConfig.Timezone)
	s.Equal("09:30", calendarConfig.RegularOpen)
	s.Equal("16:00", calendarConfig.RegularClose)
}

func (s *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	s.Require().NoError(err)
	s.NotEmpty(schemaJSON)

	var schema map[string]any
	s.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))

	s.Equal("backtest-engine-v1-config", schema["title"])
	s.Contains(schemaJSON, "initial_capital")
	s.Contains(schemaJSON, "forward_fill")
	s.Contains(schemaJSON, "interactive_broker")
}
