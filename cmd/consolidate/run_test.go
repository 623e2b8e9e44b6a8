package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-consolidator/internal/config"
	"github.com/rxtech-lab/argo-consolidator/internal/indicator"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/mocks"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const runConfig = `
version: "1.0.0"
default_period: 1d
warm_up: true
history:
  kind: duckdb
  path: %s
  aggregate: true
sink:
  enabled: true
  path: %s
registrations:
  - exchange: NYSE
    symbol: SPY
    asset_class: equity
    indicator: sma
    params:
      period: 3
  - exchange: NYSE
    symbol: SPY
    asset_class: equity
    indicator: vwap
    period: 1h
    warm_up: false
    params:
      period: 2
`

type RunTestSuite struct {
	suite.Suite
	dir         string
	samplesPath string
	barsPath    string
	now         time.Time
}

func TestRunSuite(t *testing.T) {
	suite.Run(t, new(RunTestSuite))
}

func (suite *RunTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.samplesPath = filepath.Join(suite.dir, "samples.parquet")
	suite.barsPath = filepath.Join(suite.dir, "bars.parquet")
	suite.now = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	spy := types.NewInstrument("NYSE", "SPY", types.AssetClassEquity)
	samples := mocks.GenerateDays(spy, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 5)
	suite.Require().NoError(writeSamples(suite.samplesPath, samples))
}

func (suite *RunTestSuite) config(body string) *config.Config {
	cfg, err := config.Parse([]byte(body))
	suite.Require().NoError(err)

	return cfg
}

func (suite *RunTestSuite) newRunner(cfg *config.Config) *runner {
	r, err := newRunner(context.Background(), cfg, logger.NewNopLogger(), suite.now)
	suite.Require().NoError(err)

	r.progress = io.Discard
	suite.T().Cleanup(func() { r.Close() })

	return r
}

func (suite *RunTestSuite) TestWarmUpReplayAndPersist() {
	r := suite.newRunner(suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath)))

	suite.Require().Len(r.registrations, 2)

	sma := r.registrations[0].Info()
	suite.Equal("SMA(3)_SPY_1d", sma.Name)
	suite.True(sma.Ready, "three daily bars of history precede now")

	suite.False(r.registrations[1].Info().Ready)
	suite.Equal(2, r.pipeline.Registry().Len(), "vwap runs on its own hourly consolidator")
}

func (suite *RunTestSuite) TestReplayClosesLiveBars() {
	r := suite.newRunner(suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath)))

	suite.Require().NoError(r.replay(context.Background(), suite.samplesPath, true))

	vwap := r.registrations[1].Info()
	suite.True(vwap.Ready)
	suite.Equal("1h", vwap.Period.String())

	suite.Require().NoError(r.finish())

	// Jan 5 and Jan 6 daily bars plus 48 hourly bars
	suite.Equal(50, r.sink.Written())

	_, err := os.Stat(suite.barsPath)
	suite.Require().NoError(err)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	var count int
	suite.Require().NoError(db.QueryRow(fmt.Sprintf(`SELECT count(*) FROM read_parquet('%s') WHERE period = '1d'`, suite.barsPath)).Scan(&count))
	suite.Equal(2, count)
}

func (suite *RunTestSuite) TestUnknownIndicator() {
	cfg := suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath))
	cfg.Registrations[0].Indicator = "kama"

	_, err := newRunner(context.Background(), cfg, logger.NewNopLogger(), suite.now)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RunTestSuite) TestSelectorOnBarIndicator() {
	cfg := suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath))
	cfg.Registrations[1].Selector = "high"

	_, err := newRunner(context.Background(), cfg, logger.NewNopLogger(), suite.now)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSelector))
}

func (suite *RunTestSuite) TestSampleConfigIsValid() {
	cfg := sampleConfig()
	suite.NoError(cfg.Validate())
}

func (suite *RunTestSuite) TestStreamFeedsPipeline() {
	r := suite.newRunner(suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath)))

	upgrader := websocket.Upgrader{}
	router := mux.NewRouter()
	router.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"exchange":"NYSE","symbol":"SPY","time":"2024-01-05T12:00:00Z","price":"100","quantity":"1"}`))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	suite.Require().NoError(r.stream(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", 0))

	spy := types.NewInstrument("NYSE", "SPY", types.AssetClassEquity)
	daily, ok := r.pipeline.Registry().Get(spy, period.MustParse("1d"))
	suite.Require().True(ok)
	suite.True(daily.Partial().IsSome())
}

func (suite *RunTestSuite) TestRegisterUsesCatalog() {
	r := suite.newRunner(suite.config(fmt.Sprintf(runConfig, suite.samplesPath, suite.barsPath)))

	ctrl := gomock.NewController(suite.T())
	catalog := mocks.NewMockCatalog(ctrl)

	sma, err := indicator.NewSMA(2)
	suite.Require().NoError(err)

	params := map[string]any{"period": 2}
	catalog.EXPECT().IsBarKind(types.IndicatorType("custom")).Return(false)
	catalog.EXPECT().Create(types.IndicatorType("custom"), params).Return(sma, nil)

	err = r.register(context.Background(), catalog, config.Registration{
		Name:       "custom-high",
		Exchange:   "NYSE",
		Symbol:     "SPY",
		AssetClass: "equity",
		Indicator:  "custom",
		Params:     params,
		Selector:   "high",
		WarmUp:     optional.Some(false),
	})
	suite.Require().NoError(err)

	suite.Require().Len(r.registrations, 3)
	info := r.registrations[2].Info()
	suite.Equal("custom-high", info.Name)
	suite.Equal("1d", info.Period.String())
	suite.True(info.Attached)
	suite.False(info.Ready)
}
