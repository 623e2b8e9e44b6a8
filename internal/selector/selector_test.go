package selector

import (
	"testing"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SelectorTestSuite struct {
	suite.Suite
	bar types.Bar
}

func TestSelectorSuite(t *testing.T) {
	suite.Run(t, new(SelectorTestSuite))
}

func (suite *SelectorTestSuite) SetupTest() {
	suite.bar = types.Bar{
		Open:   decimal.NewFromInt(10),
		High:   decimal.NewFromInt(20),
		Low:    decimal.NewFromInt(5),
		Close:  decimal.NewFromInt(14),
		Volume: decimal.NewFromInt(1000),
	}
}

func (suite *SelectorTestSuite) TestByName() {
	tests := []struct {
		name     string
		expected decimal.Decimal
	}{
		{"", decimal.NewFromInt(14)},
		{"close", decimal.NewFromInt(14)},
		{"Open", decimal.NewFromInt(10)},
		{"high", decimal.NewFromInt(20)},
		{"low", decimal.NewFromInt(5)},
		{"volume", decimal.NewFromInt(1000)},
		{"typical", decimal.NewFromInt(13)},
		{"median", decimal.NewFromFloat(12.5)},
		{"ohlc4", decimal.NewFromFloat(12.25)},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			sel, err := ByName(tt.name)
			suite.Require().NoError(err)
			suite.True(tt.expected.Equal(sel(suite.bar)), "got %s", sel(suite.bar))
		})
	}
}

func (suite *SelectorTestSuite) TestByNameUnknown() {
	_, err := ByName("vwap")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSelector))
}

func (suite *SelectorTestSuite) TestNamesAreResolvable() {
	for _, name := range Names() {
		_, err := ByName(string(name))
		suite.NoError(err, name)
	}
}

func (suite *SelectorTestSuite) TestDefaultDecimalIsClose() {
	sel, err := Default[decimal.Decimal]()
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(14).Equal(sel(suite.bar)))
}

func (suite *SelectorTestSuite) TestDefaultBarIsIdentity() {
	sel, err := Default[types.Bar]()
	suite.Require().NoError(err)
	suite.Equal(suite.bar, sel(suite.bar))
}

func (suite *SelectorTestSuite) TestDefaultUnsupportedType() {
	_, err := Default[float64]()
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}
