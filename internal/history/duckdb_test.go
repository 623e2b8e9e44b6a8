package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DuckDBSourceTestSuite struct {
	suite.Suite
	path string
	spy  types.Instrument
	base time.Time
	log  *logger.Logger
}

func TestDuckDBSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBSourceTestSuite))
}

// SetupTest writes a parquet file with one SPY row per minute and a single QQQ row.
func (suite *DuckDBSourceTestSuite) SetupTest() {
	suite.spy = types.NewInstrument("NYSE", "SPY", types.AssetClassEquity)
	suite.base = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	suite.log = logger.NewNopLogger()
	suite.path = filepath.Join(suite.T().TempDir(), "history.parquet")

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	_, err = db.Exec(`CREATE TABLE market_data (time TIMESTAMP, symbol VARCHAR, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE)`)
	suite.Require().NoError(err)

	for i := range 6 {
		price := float64(100 + i)
		_, err = db.Exec(`INSERT INTO market_data VALUES ($1, 'SPY', $2, $3, $4, $5, 10)`,
			suite.base.Add(time.Duration(i)*time.Minute), price, price+1, price-1, price+0.5)
		suite.Require().NoError(err)
	}

	_, err = db.Exec(`INSERT INTO market_data VALUES ($1, 'QQQ', 1, 1, 1, 1, 1)`, suite.base)
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, suite.path))
	suite.Require().NoError(err)
}

func (suite *DuckDBSourceTestSuite) fetch(source *DuckDBSource, key period.Key, from, to time.Time) []types.MarketData {
	var out []types.MarketData

	for sample, err := range source.Fetch(context.Background(), suite.spy, key, from, to) {
		suite.Require().NoError(err)

		out = append(out, sample)
	}

	return out
}

func (suite *DuckDBSourceTestSuite) TestFetchRawRows() {
	source, err := NewDuckDBSource(suite.path, suite.log)
	suite.Require().NoError(err)

	defer source.Close()

	got := suite.fetch(source, period.MustParse("1m"), suite.base.Add(time.Minute), suite.base.Add(4*time.Minute))
	suite.Require().Len(got, 3)
	suite.Equal(suite.base.Add(time.Minute), got[0].Time)
	suite.Equal(suite.spy, got[0].Instrument)
	suite.True(got[0].Open.Equal(decimal.NewFromInt(101)))
	suite.True(got[2].Close.Equal(decimal.NewFromFloat(103.5)))
}

func (suite *DuckDBSourceTestSuite) TestFetchAggregated() {
	source, err := NewDuckDBSource(suite.path, suite.log, WithAggregation())
	suite.Require().NoError(err)

	defer source.Close()

	got := suite.fetch(source, period.MustParse("3m"), suite.base, suite.base.Add(6*time.Minute))
	suite.Require().Len(got, 2)

	first := got[0]
	suite.Equal(suite.base, first.Time)
	suite.True(first.Open.Equal(decimal.NewFromInt(100)))
	suite.True(first.High.Equal(decimal.NewFromInt(103)))
	suite.True(first.Low.Equal(decimal.NewFromInt(99)))
	suite.True(first.Close.Equal(decimal.NewFromFloat(102.5)))
	suite.True(first.Volume.Equal(decimal.NewFromInt(30)))
	suite.Equal(suite.base.Add(3*time.Minute), got[1].Time)
}

func (suite *DuckDBSourceTestSuite) TestMissingFile() {
	_, err := NewDuckDBSource(filepath.Join(suite.T().TempDir(), "missing.parquet"), suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))

	_, err = NewDuckDBSource("", suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}
