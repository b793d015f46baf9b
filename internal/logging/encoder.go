package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// tagEncoder renders one line per record as
// "TIME [WHEN/STATUS] emitter.action(item/item_id): message", with
// optional ANSI coloring of the [WHEN/STATUS] tag.
type tagEncoder struct {
	zapcore.Encoder
	color bool
}

func newTagEncoder(color bool) *tagEncoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:    "time",
		MessageKey: "msg",
		EncodeTime: zapcore.ISO8601TimeEncoder,
	}
	return &tagEncoder{Encoder: zapcore.NewConsoleEncoder(cfg), color: color}
}

func (e *tagEncoder) Clone() zapcore.Encoder {
	return &tagEncoder{Encoder: e.Encoder.Clone(), color: e.color}
}

func (e *tagEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var when, status, action, item, itemID string
	rest := fields[:0:0]
	for _, f := range fields {
		switch f.Key {
		case "when":
			when = f.String
		case "status":
			status = f.String
		case "action":
			action = f.String
		case "item":
			item = f.String
		case "item_id":
			itemID = f.String
		default:
			rest = append(rest, f)
		}
	}

	buf := buffer.NewPool().Get()
	buf.AppendString(ent.Time.Format(time.RFC3339))
	buf.AppendByte(' ')

	tag := fmt.Sprintf("[%s/%s]", when, status)
	if e.color {
		buf.AppendString(colorFor(status))
		buf.AppendString(tag)
		buf.AppendString(ansiReset)
	} else {
		buf.AppendString(tag)
	}
	buf.AppendByte(' ')

	if action != "" || item != "" {
		loc := action
		if item != "" {
			loc = fmt.Sprintf("%s(%s", action, item)
			if itemID != "" {
				loc += "/" + itemID
			}
			loc += ")"
		}
		if ent.LoggerName != "" {
			loc = ent.LoggerName + "." + loc
		}
		buf.AppendString(loc)
		buf.AppendString(": ")
	}

	buf.AppendString(ent.Message)
	for _, f := range rest {
		buf.AppendString(" ")
		buf.AppendString(f.Key)
		buf.AppendString("=")
		buf.AppendString(fmt.Sprint(f.Interface))
	}
	buf.AppendString("\n")
	return buf, nil
}

const ansiReset = "\x1b[0m"

func colorFor(status string) string {
	switch Status(status) {
	case StatusOK, StatusYes, StatusEnd:
		return "\x1b[32m" // green
	case StatusFail, StatusErr, StatusNo:
		return "\x1b[31m" // red
	case StatusInd:
		return "\x1b[33m" // yellow
	default:
		return "\x1b[36m" // cyan
	}
}
