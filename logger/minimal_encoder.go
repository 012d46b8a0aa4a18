package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Everforest palette, kept from the server console days.
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorTime   = "\x1b[38;5;107m"
	colorName   = "\x1b[38;5;208m"
	colorFields = "\x1b[38;5;109m"
	colorWarn   = "\x1b[38;5;179m"
	colorError  = "\x1b[38;5;167m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder renders one calm line per entry:
//
//	13:04:35  WARN  c.classify  low confidence  {"request_id":"…","count":3}
//
// Structured fields, including those added through With, are delegated to
// an embedded JSON encoder configured to emit nothing but the fields.
type minimalEncoder struct {
	zapcore.Encoder
	color bool
}

func newMinimalEncoder() *minimalEncoder {
	return newMinimalEncoderWithColor(os.Getenv("NO_COLOR") == "")
}

func newMinimalEncoderWithColor(color bool) *minimalEncoder {
	fieldsOnly := zapcore.EncoderConfig{
		LineEnding:     "",
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime:     zapcore.EpochMillisTimeEncoder,
	}
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(fieldsOnly),
		color:   color,
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone(), color: enc.color}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	enc.paint(final, colorTime, ent.Time.Format("15:04:05"))

	// Info is the default register; only other levels are labelled
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		enc.paint(final, levelColor(ent.Level), ent.Level.CapitalString())
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		enc.paint(final, colorName, abbreviateName(ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	rendered, err := enc.Encoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		final.Free()
		return nil, err
	}
	if s := strings.TrimSpace(rendered.String()); s != "{}" && s != "" {
		final.AppendString("  ")
		enc.paint(final, colorFields, s)
	}
	rendered.Free()

	final.AppendString("\n")
	return final, nil
}

func (enc *minimalEncoder) paint(buf *buffer.Buffer, color, text string) {
	if !enc.color || color == "" {
		buf.AppendString(text)
		return
	}
	buf.AppendString(color)
	buf.AppendString(text)
	buf.AppendString(colorReset)
}

func levelColor(level zapcore.Level) string {
	switch {
	case level == zapcore.WarnLevel:
		return colorBold + colorWarn
	case level >= zapcore.ErrorLevel:
		return colorBold + colorError
	default:
		return ""
	}
}

// abbreviateName shortens component names: classify -> classify, bridge.engine -> b.engine
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}
