package history

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DownloadTestSuite struct {
	suite.Suite
	btc  types.Instrument
	base time.Time
}

func TestDownloadSuite(t *testing.T) {
	suite.Run(t, new(DownloadTestSuite))
}

func (suite *DownloadTestSuite) SetupTest() {
	suite.btc = types.NewInstrument("BINANCE", "BTCUSDT", types.AssetClassCrypto)
	suite.base = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *DownloadTestSuite) TestValidate() {
	valid := DownloadParams{
		Provider:   KindBinance,
		Instrument: suite.btc,
		Period:     "1m",
		From:       suite.base,
		To:         suite.base.Add(time.Hour),
	}

	key, err := valid.Validate()
	suite.Require().NoError(err)
	suite.Equal(time.Minute, key.Duration())

	testCases := []struct {
		name   string
		mutate func(p *DownloadParams)
		code   errors.ErrorCode
	}{
		{name: "memory provider", mutate: func(p *DownloadParams) { p.Provider = KindMemory }, code: errors.ErrCodeInvalidParameter},
		{name: "polygon without key", mutate: func(p *DownloadParams) { p.Provider = KindPolygon }, code: errors.ErrCodeInvalidParameter},
		{name: "reversed window", mutate: func(p *DownloadParams) { p.To = p.From.Add(-time.Hour) }, code: errors.ErrCodeInvalidParameter},
		{name: "missing symbol", mutate: func(p *DownloadParams) { p.Instrument = types.Instrument{} }, code: errors.ErrCodeMissingParameter},
		{name: "bad period", mutate: func(p *DownloadParams) { p.Period = "fortnight" }, code: errors.ErrCodeInvalidPeriod},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			params := valid
			tc.mutate(&params)

			_, err := params.Validate()
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *DownloadTestSuite) TestCollectFiltersWindow() {
	source := NewMemorySource()
	for i := range 5 {
		source.Add(types.NewTick(suite.btc, suite.base.Add(time.Duration(i)*time.Minute), decimal.NewFromInt(int64(i)), decimal.NewFromInt(1)))
	}

	progress := 0
	samples, err := Collect(context.Background(), source, suite.btc, period.MustParse("1m"),
		suite.base.Add(time.Minute), suite.base.Add(4*time.Minute), func() { progress++ })
	suite.Require().NoError(err)

	suite.Len(samples, 3)
	suite.Equal(3, progress)
}
