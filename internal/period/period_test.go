package period

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type PeriodTestSuite struct {
	suite.Suite
}

func TestPeriodSuite(t *testing.T) {
	suite.Run(t, new(PeriodTestSuite))
}

func (suite *PeriodTestSuite) TestNamedAndDurationKeysAreEqual() {
	named, err := FromResolution(ResolutionDaily)
	suite.Require().NoError(err)

	explicit, err := FromDuration(24 * time.Hour)
	suite.Require().NoError(err)

	suite.Equal(named, explicit)
	suite.Equal(named, MustParse("1d"))
	suite.Equal(named, MustParse("daily"))
	suite.Equal(named, MustParse("day"))
	suite.Equal(named, MustParse("24h"))

	// Keys are comparable map keys
	m := map[Key]string{named: "daily"}
	suite.Equal("daily", m[explicit])
}

func (suite *PeriodTestSuite) TestParseShorthands() {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"1s", time.Second},
		{"1m", time.Minute},
		{"15m", 15 * time.Minute},
		{"4h", 4 * time.Hour},
		{"3d", 72 * time.Hour},
		{"1w", 168 * time.Hour},
		{"minute", time.Minute},
		{"Hour", time.Hour},
		{"90s", 90 * time.Second},
	}

	for _, tt := range tests {
		suite.Run(tt.input, func() {
			key, err := Parse(tt.input)
			suite.Require().NoError(err)
			suite.Equal(tt.expected, key.Duration())
		})
	}
}

func (suite *PeriodTestSuite) TestParseInvalid() {
	for _, input := range []string{"", "tick", "1M", "abc", "-5m", "0s"} {
		_, err := Parse(input)
		suite.Error(err, input)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod), input)
	}
}

func (suite *PeriodTestSuite) TestFromResolutionInvalid() {
	_, err := FromResolution(ResolutionTick)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = FromResolution(Resolution("fortnight"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *PeriodTestSuite) TestMustParsePanics() {
	suite.Panics(func() { MustParse("tick") })
}

func (suite *PeriodTestSuite) TestFloorAndBounds() {
	key := MustParse("5m")
	t := time.Date(2024, 3, 4, 9, 33, 12, 0, time.UTC)

	suite.Equal(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), key.Floor(t))

	start, end := key.Bounds(t)
	suite.Equal(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), start)
	suite.Equal(time.Date(2024, 3, 4, 9, 35, 0, 0, time.UTC), end)

	// A timestamp on the boundary starts a new period
	start, _ = key.Bounds(end)
	suite.Equal(end, start)
}

func (suite *PeriodTestSuite) TestFloorDailyAndWeekly() {
	ny, err := time.LoadLocation("America/New_York")
	suite.Require().NoError(err)

	t := time.Date(2024, 3, 6, 22, 0, 0, 0, ny) // 2024-03-07 03:00 UTC
	suite.Equal(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), MustParse("1d").Floor(t))

	// Weekly periods start on Monday
	suite.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), MustParse("1w").Floor(t))
}

func (suite *PeriodTestSuite) TestResolution() {
	suite.Equal(ResolutionDaily, MustParse("3d").Resolution())
	suite.Equal(ResolutionHour, MustParse("4h").Resolution())
	suite.Equal(ResolutionMinute, MustParse("90m").Resolution())
	suite.Equal(ResolutionSecond, MustParse("90s").Resolution())
	suite.Equal(ResolutionTick, MustParse("250ms").Resolution())
}

func (suite *PeriodTestSuite) TestString() {
	suite.Equal("1d", MustParse("daily").String())
	suite.Equal("15m", MustParse("15m").String())
	suite.Equal("1m30s", MustParse("90s").String())
	suite.Equal("2d", MustParse("48h").String())
}

func (suite *PeriodTestSuite) TestYAMLRoundTrip() {
	var cfg struct {
		Period Key `yaml:"period"`
	}

	suite.Require().NoError(yaml.Unmarshal([]byte("period: 15m\n"), &cfg))
	suite.Equal(15*time.Minute, cfg.Period.Duration())

	err := yaml.Unmarshal([]byte("period: tick\n"), &cfg)
	suite.Error(err)
}

func (suite *PeriodTestSuite) TestDayAndWeekMultiples() {
	suite.Equal(48*time.Hour, MustParse("2d").Duration())
	suite.Equal(14*24*time.Hour, MustParse("2w").Duration())

	_, err := Parse("0d")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	// counts whose duration does not fit in time.Duration
	for _, input := range []string{"106752d", "213504d", "15251w", "-3d"} {
		_, err := Parse(input)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod), input)
	}

	suite.Equal(106751*24*time.Hour, MustParse("106751d").Duration())

	// String and Parse agree for day multiples without a shorthand
	key := MustParse("5d")
	suite.Equal(key, MustParse(key.String()))
}
