package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	testCases := []struct {
		level   zapcore.Level
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{level: zapcore.DebugLevel, enabled: zapcore.DebugLevel, muted: zapcore.InvalidLevel},
		{level: zapcore.InfoLevel, enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{level: zapcore.WarnLevel, enabled: zapcore.ErrorLevel, muted: zapcore.InfoLevel},
	}

	for _, tc := range testCases {
		suite.Run(tc.level.String(), func() {
			log, err := NewLoggerWithLevel(tc.level)
			suite.Require().NoError(err)
			suite.True(log.Core().Enabled(tc.enabled))

			if tc.muted != zapcore.InvalidLevel {
				suite.False(log.Core().Enabled(tc.muted))
			}
		})
	}

	log, err := NewLogger()
	suite.Require().NoError(err)
	suite.False(log.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNamedScopesEntries() {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{Logger: zap.New(core)}

	log.Named("warmup").Info("Warm-up finished", zap.String("instrument", "SPY.XNYS"))

	entries := logs.All()
	suite.Require().Len(entries, 1)
	suite.Equal("warmup", entries[0].LoggerName)
	suite.Equal("SPY.XNYS", entries[0].ContextMap()["instrument"])
}

func (suite *LoggerTestSuite) TestNilAndNopLoggers() {
	var nilLogger *Logger
	child := nilLogger.Named("registry")
	suite.Require().NotNil(child)
	child.Debug("discarded")

	suite.NoError((&Logger{}).Sync())
	suite.NoError(NewNopLogger().Sync())
}
