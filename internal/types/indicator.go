package types

// IndicatorType names an indicator kind in the catalog and in configuration files.
type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeVWAP           IndicatorType = "vwap"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeDEMA           IndicatorType = "dema"
	IndicatorTypeStochastic     IndicatorType = "stochastic"
)
