package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("正常系: レベルが反映されること", func(t *testing.T) {
		logger, err := New("debug")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("正常系: 空の場合はinfoになること", func(t *testing.T) {
		logger, err := New("")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("エラー系: 不正なレベル", func(t *testing.T) {
		_, err := New("verbose")
		assert.Error(t, err)
	})
}
