package app

import (
	"fmt"
	"io"
	"strings"

	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes JSON diagnostics to w, which is stderr in production so
// stdout only ever carries envelopes.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("invalid log level %q", level), err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core).Named("loop"), nil
}
