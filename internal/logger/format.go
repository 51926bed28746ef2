package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var levelEmoji = map[zapcore.Level]string{
	zapcore.DebugLevel: "🐛",
	zapcore.InfoLevel:  "💡",
	zapcore.WarnLevel:  "⚠️",
	zapcore.ErrorLevel: "⛔",
}

// 256-colour ANSI foregrounds.
var levelColor = map[zapcore.Level]int{
	zapcore.DebugLevel: 244,
	zapcore.InfoLevel:  12,
	zapcore.WarnLevel:  208,
	zapcore.ErrorLevel: 196,
}

func emojiLevelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		emoji, ok := levelEmoji[l]
		if !ok {
			emoji = levelEmoji[zapcore.ErrorLevel]
		}
		tag := emoji + " " + l.CapitalString()
		if c, ok := levelColor[l]; ok && color {
			tag = fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", c, tag)
		}
		enc.AppendString(tag)
	}
}

// widthEncoder wraps every rendered console line, prefix included, to width columns.
type widthEncoder struct {
	zapcore.Encoder
	width int
}

func (w widthEncoder) Clone() zapcore.Encoder {
	return widthEncoder{Encoder: w.Encoder.Clone(), width: w.width}
}

func (w widthEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := w.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}
	line := buf.String()
	ending := ""
	if strings.HasSuffix(line, "\n") {
		line, ending = strings.TrimSuffix(line, "\n"), "\n"
	}
	buf.Reset()
	buf.AppendString(fitWidth(line, w.width))
	buf.AppendString(ending)
	return buf, nil
}

const tabStop = 8

// fitWidth hard-wraps every line of s so no line exceeds width columns, breaking on the last
// blank when there is one. ANSI escapes take no columns and tabs advance to the next tab stop.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	var out []string
	for {
		cut := breakPoint(line, width)
		if cut >= len(line) {
			break
		}
		out = append(out, strings.TrimRight(line[:cut], " \t"))
		line = strings.TrimLeft(line[cut:], " \t")
	}
	return strings.Join(append(out, line), "\n")
}

// breakPoint returns the byte offset where line must be split so its head fits width columns,
// or len(line) when it already fits.
func breakPoint(line string, width int) int {
	cols, lastBlank := 0, -1
	for i := 0; i < len(line); {
		if n := escapeLen(line[i:]); n > 0 {
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		next := cols + 1
		if r == '\t' {
			next = (cols/tabStop + 1) * tabStop
		}
		if next > width {
			switch {
			case i == 0:
				return size
			case r == ' ' || r == '\t':
				return i
			case lastBlank > 0:
				return lastBlank
			default:
				return i
			}
		}
		if r == ' ' || r == '\t' {
			lastBlank = i
		}
		cols = next
		i += size
	}
	return len(line)
}

// escapeLen returns the length of the ANSI CSI sequence at the start of s, or 0.
func escapeLen(s string) int {
	if len(s) < 2 || s[0] != 0x1b || s[1] != '[' {
		return 0
	}
	for i := 2; i < len(s); i++ {
		if c := s[i]; c >= 0x40 && c <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}

// visibleWidth counts the columns line occupies on a terminal.
func visibleWidth(line string) int {
	cols := 0
	for i := 0; i < len(line); {
		if n := escapeLen(line[i:]); n > 0 {
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		if r == '\t' {
			cols = (cols/tabStop + 1) * tabStop
		} else {
			cols++
		}
		i += size
	}
	return cols
}

// CaptureTrace records the caller's stack, skipping skip frames above the caller of CaptureTrace.
func CaptureTrace(skip int) []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	return pcs[:n]
}

func formatTrace(pcs []uintptr, depth int) []string {
	if len(pcs) == 0 || depth <= 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, depth)
	for len(lines) < depth {
		f, more := frames.Next()
		if f.Function != "" {
			lines = append(lines, fmt.Sprintf("  #%d %s (%s:%d)", len(lines), f.Function, filepath.Base(f.File), f.Line))
		}
		if !more {
			break
		}
	}
	return lines
}
