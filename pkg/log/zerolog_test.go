package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Info("file received",
		String("file", "a.png"),
		Uint("count", 3),
		Uint16("port", 8000),
		Bool("scrambled", false),
		Duration("took", time.Second),
		Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{`"file":"a.png"`, `"count":3`, `"port":8000`, `"scrambled":false`, `"error":"boom"`, `"message":"file received"`} {
		assert.Contains(t, out, want)
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	child := z.With(String("receiver", "abc123"), Uint16("port", 9001))
	child.Warn("accept failed")

	out := buf.String()
	assert.Contains(t, out, `"receiver":"abc123"`)
	assert.Contains(t, out, `"port":9001`)
	assert.Equal(t, 1, strings.Count(out, `"receiver"`), "receiver field duplicated: %s", out)
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	z.Debug("hidden", String("k", "v"))
	assert.Zero(t, buf.Len(), "debug message written at info level")
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopLogger{}, OrNoop(nil))
	z := NewZerologAdapter()
	assert.Equal(t, Logger(z), OrNoop(z), "non-nil loggers pass through")
}
