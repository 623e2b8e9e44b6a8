package pipeline

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/indicator"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/mocks"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PipelineTestSuite struct {
	suite.Suite
	spy    types.Instrument
	qqq    types.Instrument
	daily  period.Key
	today  time.Time
	now    time.Time
	source *history.MemorySource
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.spy = types.NewInstrument("NYSE", "SPY", types.AssetClassEquity)
	suite.qqq = types.NewInstrument("NASDAQ", "QQQ", types.AssetClassEquity)
	suite.daily = period.MustParse("1d")
	suite.today = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	suite.now = suite.today.Add(15 * time.Hour)

	suite.source = history.NewMemorySource()
	suite.source.Add(
		suite.tick(suite.spy, suite.today.AddDate(0, 0, -3).Add(14*time.Hour), 10),
		suite.tick(suite.spy, suite.today.AddDate(0, 0, -2).Add(14*time.Hour), 12),
		suite.tick(suite.spy, suite.today.AddDate(0, 0, -1).Add(14*time.Hour), 14),
	)
}

func (suite *PipelineTestSuite) tick(instrument types.Instrument, t time.Time, price int64) types.MarketData {
	return types.NewTick(instrument, t, decimal.NewFromInt(price), decimal.NewFromInt(1))
}

func (suite *PipelineTestSuite) newPipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithHistory(suite.source),
		WithDefaultPeriod(suite.daily),
		WithWarmUpByDefault(true),
		WithClock(func() time.Time { return suite.now }),
	}

	return New(append(base, opts...)...)
}

func (suite *PipelineTestSuite) newSMA(n int) *indicator.SMA {
	sma, err := indicator.NewSMA(n)
	suite.Require().NoError(err)

	return sma
}

func (suite *PipelineTestSuite) TestWarmUpThenLive() {
	p := suite.newPipeline()

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	suite.Equal("SMA(3)_SPY_1d", handle.Name())
	suite.True(handle.IsReady())
	suite.True(handle.Value().Equal(decimal.NewFromInt(12)))
	suite.True(handle.Report().Complete())
	suite.Equal(3, handle.Report().Bars)

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 18)))
	suite.True(handle.Value().Equal(decimal.NewFromInt(12)), "open bar must not reach the indicator")

	suite.Equal(1, p.Scan(suite.today.Add(24*time.Hour)))
	suite.Equal("14.67", handle.Value().StringFixed(2))
}

func (suite *PipelineTestSuite) TestConsolidatorsAreShared() {
	p := suite.newPipeline(WithWarmUpByDefault(false))

	sma, err := Register(context.Background(), p, suite.spy, suite.newSMA(2), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	ema, err := indicator.NewEMA(2)
	suite.Require().NoError(err)
	emaHandle, err := Register(context.Background(), p, suite.spy, ema, Options[decimal.Decimal]{
		Period: optional.Some(period.MustParse("24h")),
	})
	suite.Require().NoError(err)

	hourly, err := Register(context.Background(), p, suite.spy, suite.newSMA(2), Options[decimal.Decimal]{
		Period: optional.Some(period.MustParse("1h")),
	})
	suite.Require().NoError(err)

	suite.Same(sma.Consolidator(), emaHandle.Consolidator())
	suite.NotSame(sma.Consolidator(), hourly.Consolidator())
	suite.Equal(2, p.Registry().Len())
	suite.Equal(2, sma.Consolidator().Subscribers())
	suite.Len(p.Bindings(), 3)
}

func (suite *PipelineTestSuite) TestFeedRoutesByInstrument() {
	p := suite.newPipeline(WithWarmUpByDefault(false))

	spy, err := Register(context.Background(), p, suite.spy, suite.newSMA(1), Options[decimal.Decimal]{})
	suite.Require().NoError(err)
	qqq, err := Register(context.Background(), p, suite.qqq, suite.newSMA(1), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	other := types.NewInstrument("NYSE", "IWM", types.AssetClassEquity)
	suite.Require().NoError(p.Feed(suite.tick(other, suite.now, 1)))

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 10)))
	suite.Require().NoError(p.Feed(suite.tick(suite.qqq, suite.now, 20)))
	suite.Equal(2, p.Scan(suite.today.Add(24*time.Hour)))

	suite.True(spy.Value().Equal(decimal.NewFromInt(10)))
	suite.True(qqq.Value().Equal(decimal.NewFromInt(20)))
}

func (suite *PipelineTestSuite) TestLateSamplesAreReported() {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	p := suite.newPipeline(WithWarmUpByDefault(false), WithMetrics(m))

	_, err := Register(context.Background(), p, suite.spy, suite.newSMA(1), Options[decimal.Decimal]{})
	suite.Require().NoError(err)
	_, err = Register(context.Background(), p, suite.spy, suite.newSMA(1), Options[decimal.Decimal]{
		Period: optional.Some(period.MustParse("1h")),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 10)))

	err = p.Feed(suite.tick(suite.spy, suite.now.Add(-2*time.Hour), 9))
	suite.Require().Error(err)
	suite.True(errors.IsLateDataError(err))

	err = p.Feed(suite.tick(suite.spy, suite.today.AddDate(0, 0, -1), 9))
	suite.Require().Error(err)

	suite.Equal(float64(2), testutil.ToFloat64(m.LateSamplesTotal.WithLabelValues("SPY", "1h")))
	suite.Equal(float64(1), testutil.ToFloat64(m.LateSamplesTotal.WithLabelValues("SPY", "1d")))
	suite.Equal(float64(3), testutil.ToFloat64(m.SamplesTotal.WithLabelValues("SPY")))
	suite.Equal(float64(2), testutil.ToFloat64(m.Consolidators))
	suite.Equal(float64(2), testutil.ToFloat64(m.BindingsTotal))
}

func (suite *PipelineTestSuite) TestBarsClosedAreCounted() {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	p := suite.newPipeline(WithWarmUpByDefault(false), WithMetrics(m))

	_, err := Register(context.Background(), p, suite.spy, suite.newSMA(1), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 10)))
	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now.Add(24*time.Hour), 11)))

	suite.Equal(float64(1), testutil.ToFloat64(m.BarsClosedTotal.WithLabelValues("SPY", "1d")))
}

func (suite *PipelineTestSuite) TestFailedWarmUpDoesNotAttach() {
	ctrl := gomock.NewController(suite.T())
	source := mocks.NewMockSource(ctrl)
	source.EXPECT().Fetch(gomock.Any(), suite.spy, suite.daily, gomock.Any(), gomock.Any()).
		Return(iter.Seq2[types.MarketData, error](func(yield func(types.MarketData, error) bool) {
			yield(types.MarketData{}, errors.New(errors.ErrCodeDataSourceUnavailable, "down"))
		}))

	p := New(
		WithHistory(source),
		WithDefaultPeriod(suite.daily),
		WithWarmUpByDefault(true),
		WithClock(func() time.Time { return suite.now }),
	)

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.Nil(handle)
	suite.True(errors.HasCode(err, errors.ErrCodeHistoricalDataFailed))

	_, ok := p.Registry().Get(suite.spy, suite.daily)
	suite.False(ok)
	suite.Zero(p.Registry().Len())
	suite.Empty(p.Bindings())
	suite.NoError(p.Feed(suite.tick(suite.spy, suite.now, 18)))
}

func (suite *PipelineTestSuite) TestFailedWarmUpKeepsSharedConsolidator() {
	ctrl := gomock.NewController(suite.T())
	source := mocks.NewMockSource(ctrl)
	source.EXPECT().Fetch(gomock.Any(), suite.spy, suite.daily, gomock.Any(), gomock.Any()).
		Return(iter.Seq2[types.MarketData, error](func(yield func(types.MarketData, error) bool) {
			yield(types.MarketData{}, errors.New(errors.ErrCodeDataSourceUnavailable, "down"))
		}))

	p := New(
		WithHistory(source),
		WithDefaultPeriod(suite.daily),
		WithClock(func() time.Time { return suite.now }),
	)

	existing, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	_, err = Register(context.Background(), p, suite.spy, suite.newSMA(5), Options[decimal.Decimal]{
		WarmUp: optional.Some(true),
	})
	suite.True(errors.HasCode(err, errors.ErrCodeHistoricalDataFailed))

	suite.Equal(1, p.Registry().Len())
	suite.Equal(1, existing.Consolidator().Subscribers())
	suite.Len(p.Bindings(), 1)
}

func (suite *PipelineTestSuite) TestInsufficientHistoryStillAttaches() {
	p := suite.newPipeline()

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(5), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	report := handle.Report()
	suite.False(report.Complete())
	suite.Require().NotNil(report.Shortfall)
	suite.False(handle.IsReady())
	suite.True(handle.Info().Attached)
}

func (suite *PipelineTestSuite) TestMissingPeriod() {
	p := New()

	_, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
	suite.Zero(p.Registry().Len())
}

func (suite *PipelineTestSuite) TestWarmUpWithoutHistory() {
	p := New(WithDefaultPeriod(suite.daily))

	_, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{
		WarmUp: optional.Some(true),
	})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *PipelineTestSuite) TestInvalidInstrument() {
	p := suite.newPipeline()

	_, err := Register(context.Background(), p, types.Instrument{}, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *PipelineTestSuite) TestDeferredWarmUp() {
	p := suite.newPipeline(WithWarmUpByDefault(false))

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.Require().NoError(err)
	suite.False(handle.IsReady())

	report, err := handle.WarmUp(context.Background())
	suite.Require().NoError(err)
	suite.True(report.Complete())
	suite.True(handle.IsReady())
	suite.True(handle.Value().Equal(decimal.NewFromInt(12)))

	again, err := handle.WarmUp(context.Background())
	suite.Require().NoError(err)
	suite.Equal(report, again)

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 18)))
	suite.Equal(1, p.Scan(suite.today.Add(24*time.Hour)))
	suite.Equal("14.67", handle.Value().StringFixed(2))
}

func (suite *PipelineTestSuite) TestDeferredWarmUpAfterLiveBar() {
	p := suite.newPipeline(WithWarmUpByDefault(false))

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(3), Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	suite.Require().NoError(p.Feed(suite.tick(suite.spy, suite.now, 18)))
	suite.Equal(1, p.Scan(suite.today.Add(24*time.Hour)))

	_, err = handle.WarmUp(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeBindingAttached))
	suite.False(handle.IsReady())
}

func (suite *PipelineTestSuite) TestSelectorAndName() {
	p := suite.newPipeline()

	handle, err := Register(context.Background(), p, suite.spy, suite.newSMA(1), Options[decimal.Decimal]{
		Selector: optional.Some[selector.Selector[decimal.Decimal]](selector.Volume),
		Name:     "volume",
	})
	suite.Require().NoError(err)

	suite.Equal("volume", handle.Name())
	suite.True(handle.Value().Equal(decimal.NewFromInt(1)))
}

func (suite *PipelineTestSuite) TestBarIndicator() {
	p := suite.newPipeline()

	vwap, err := indicator.NewVWAP(3)
	suite.Require().NoError(err)

	handle, err := Register(context.Background(), p, suite.spy, vwap, Options[types.Bar]{})
	suite.Require().NoError(err)

	suite.Equal("VWAP(3)_SPY_1d", handle.Name())
	suite.True(handle.IsReady())
	suite.True(handle.Value().Equal(decimal.NewFromInt(12)))
	suite.Same(vwap, handle.Indicator())
}

func (suite *PipelineTestSuite) TestCompositeIndicatorOutputs() {
	p := suite.newPipeline(WithWarmUpByDefault(false))

	bb, err := indicator.NewBollingerBands(3, 2)
	suite.Require().NoError(err)

	handle, err := Register(context.Background(), p, suite.spy, bb, Options[decimal.Decimal]{})
	suite.Require().NoError(err)

	for i, price := range []int64{2, 4, 6} {
		day := suite.today.AddDate(0, 0, i)
		suite.Require().NoError(handle.Feed(suite.tick(suite.spy, day.Add(time.Hour), price)))
	}
	suite.Equal(1, p.Scan(suite.today.AddDate(0, 0, 3)))
	suite.Equal(0, p.Scan(suite.today.AddDate(0, 0, 3)))

	suite.True(handle.IsReady())
	suite.True(handle.Indicator().Value().Equal(decimal.NewFromInt(4)))
	suite.True(handle.Indicator().Upper().GreaterThan(handle.Indicator().Value()))
	suite.True(handle.Indicator().Lower().LessThan(handle.Indicator().Value()))
}
