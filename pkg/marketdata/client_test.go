package marketdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestNewClientRejectsInvalidConfig() {
	testCases := []struct {
		name   string
		config ClientConfig
	}{
		{
			name: "unknown provider",
			config: ClientConfig{
				ProviderType: "alpaca",
				WriterType:   WriterDuckDB,
				DataPath:     "data",
			},
		},
		{
			name: "unknown writer",
			config: ClientConfig{
				ProviderType: ProviderBinance,
				WriterType:   "csv",
				DataPath:     "data",
			},
		},
		{
			name: "missing data path",
			config: ClientConfig{
				ProviderType: ProviderBinance,
				WriterType:   WriterDuckDB,
			},
		},
		{
			name: "polygon without api key",
			config: ClientConfig{
				ProviderType: ProviderPolygon,
				WriterType:   WriterDuckDB,
				DataPath:     "data",
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			client, err := NewClient(tc.config, nil)
			s.Error(err)
			s.Nil(client)
		})
	}
}

func (s *ClientTestSuite) TestNewClientBinance() {
	client, err := NewClient(ClientConfig{
		ProviderType: ProviderBinance,
		WriterType:   WriterDuckDB,
		DataPath:     s.T().TempDir(),
	}, nil)
	s.Require().NoError(err)
	s.NotNil(client)
}

func (s *ClientTestSuite) TestNewClientPolygon() {
	client, err := NewClient(ClientConfig{
		ProviderType:  ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      s.T().TempDir(),
		PolygonApiKey: "test-key",
	}, nil)
	s.Require().NoError(err)
	s.NotNil(client)
}

func (s *ClientTestSuite) TestDownloadRejectsInvalidParams() {
	client, err := NewClient(ClientConfig{
		ProviderType: ProviderBinance,
		WriterType:   WriterDuckDB,
		DataPath:     s.T().TempDir(),
	}, nil)
	s.Require().NoError(err)

	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		params DownloadParams
	}{
		{
			name: "end before start",
			params: DownloadParams{
				Ticker:      "BTCUSDT",
				StartDate:   start,
				EndDate:     end,
				Granularity: types.GranularityDaily,
			},
		},
		{
			name: "missing ticker",
			params: DownloadParams{
				StartDate:   end,
				EndDate:     start,
				Granularity: types.GranularityDaily,
			},
		},
		{
			name: "unknown granularity",
			params: DownloadParams{
				Ticker:      "BTCUSDT",
				StartDate:   end,
				EndDate:     start,
				Granularity: "2h",
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := client.Download(context.Background(), tc.params)
			s.Error(err)
		})
	}
}

func (s *ClientTestSuite) TestSetupWriterBuildsOutputPath() {
	dataPath := filepath.Join(s.T().TempDir(), "data")
	client := &Client{
		config: ClientConfig{
			ProviderType: ProviderBinance,
			WriterType:   WriterDuckDB,
			DataPath:     dataPath,
		},
		validate: validator.New(),
	}

	w, err := client.setupWriter(DownloadParams{
		Ticker:      "AAPL",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Granularity: types.Granularity1m,
	})
	s.Require().NoError(err)
	s.NotNil(w)

	// Data directory is created on demand.
	s.DirExists(dataPath)
}

func (s *ClientTestSuite) TestSetupWriterRejectsUnknownWriter() {
	client := &Client{
		config: ClientConfig{
			ProviderType: ProviderBinance,
			WriterType:   "csv",
			DataPath:     s.T().TempDir(),
		},
		validate: validator.New(),
	}

	_, err := client.setupWriter(DownloadParams{
		Ticker:      "AAPL",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Granularity: types.GranularityDaily,
	})
	s.Error(err)
}
