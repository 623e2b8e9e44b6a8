package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CatalogTestSuite struct {
	suite.Suite
	catalog Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (suite *CatalogTestSuite) SetupTest() {
	suite.catalog = NewDefaultCatalog()
}

func (suite *CatalogTestSuite) TestList() {
	suite.Equal([]types.IndicatorType{
		types.IndicatorTypeATR,
		types.IndicatorTypeBollingerBands,
		types.IndicatorTypeDEMA,
		types.IndicatorTypeEMA,
		types.IndicatorTypeMACD,
		types.IndicatorTypeRSI,
		types.IndicatorTypeSMA,
		types.IndicatorTypeStochastic,
		types.IndicatorTypeVWAP,
	}, suite.catalog.List())
}

func (suite *CatalogTestSuite) TestCreateWithParams() {
	tests := []struct {
		name   string
		kind   types.IndicatorType
		params map[string]any
		want   string
	}{
		{name: "sma int period", kind: types.IndicatorTypeSMA, params: map[string]any{"period": 3}, want: "SMA(3)"},
		{name: "ema float period", kind: types.IndicatorTypeEMA, params: map[string]any{"period": 5.0}, want: "EMA(5)"},
		{name: "rsi default", kind: types.IndicatorTypeRSI, params: nil, want: "RSI(14)"},
		{name: "macd default", kind: types.IndicatorTypeMACD, params: nil, want: "MACD(12,26,9)"},
		{name: "bollinger", kind: types.IndicatorTypeBollingerBands, params: map[string]any{"period": 10, "std_dev": 1.5}, want: "BB(10,1.5)"},
		{name: "dema", kind: types.IndicatorTypeDEMA, params: map[string]any{"period": 4}, want: "DEMA(4)"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			ind, err := suite.catalog.Create(tc.kind, tc.params)
			suite.Require().NoError(err)

			named, ok := ind.(Named)
			suite.Require().True(ok)
			suite.Equal(tc.want, named.Name())
		})
	}
}

func (suite *CatalogTestSuite) TestCreateBar() {
	suite.True(suite.catalog.IsBarKind(types.IndicatorTypeVWAP))
	suite.False(suite.catalog.IsBarKind(types.IndicatorTypeSMA))

	ind, err := suite.catalog.CreateBar(types.IndicatorTypeVWAP, map[string]any{"period": 4})
	suite.Require().NoError(err)
	suite.Equal(4, ind.MinimumSamples())

	_, err = suite.catalog.Create(types.IndicatorTypeVWAP, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))

	sto, err := suite.catalog.CreateBar(types.IndicatorTypeStochastic, map[string]any{"period": 5, "k_period": 2.0})
	suite.Require().NoError(err)
	suite.Equal("STO(5,2,3)", sto.(Named).Name())
}

func (suite *CatalogTestSuite) TestCreateInvalidParams() {
	ind, err := suite.catalog.Create(types.IndicatorTypeSMA, map[string]any{"period": 0})
	suite.Nil(ind)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = suite.catalog.Create(types.IndicatorTypeSMA, map[string]any{"period": "ten"})
	suite.Error(err)
}

func (suite *CatalogTestSuite) TestRegisterDuplicate() {
	err := suite.catalog.Register(types.IndicatorTypeSMA, func(map[string]any) (Indicator[decimal.Decimal], error) {
		return NewEMA(2)
	})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *CatalogTestSuite) TestRemove() {
	suite.Require().NoError(suite.catalog.Remove(types.IndicatorTypeATR))
	suite.False(suite.catalog.IsBarKind(types.IndicatorTypeATR))

	err := suite.catalog.Remove(types.IndicatorTypeATR)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}
