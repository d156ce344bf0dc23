package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fsmkit/pkg/environment"
	"github.com/dmitrymomot/fsmkit/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("state entered", logger.MachineID("m-1"), logger.StateID("cart"))

		entry := decodeLine(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "state entered", entry["msg"])
		assert.Equal(t, "m-1", entry["machine_id"])
		assert.Equal(t, "cart", entry["state_id"])
	})

	t.Run("debug hidden at info level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Debug("leaving state")
		assert.Empty(t, buf.String())
	})

	t.Run("text formatter", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter())
		log.Info("snapshot saved", logger.SnapshotID("s-1"))
		assert.Contains(t, buf.String(), "snapshot_id=s-1")
	})

	t.Run("last formatter wins", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter(), logger.WithJSONFormatter())
		log.Info("msg")
		assert.Equal(t, "msg", decodeLine(t, buf)["msg"])
	})

	t.Run("static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(logger.Component("orders")))
		log.Info("msg")
		assert.Equal(t, "orders", decodeLine(t, buf)["component"])
	})

	t.Run("handler options override level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithHandlerOptions(&slog.HandlerOptions{Level: slog.LevelDebug}),
		)
		log.Debug("leaving state")
		assert.Equal(t, "DEBUG", decodeLine(t, buf)["level"])
	})
}

func TestNew_ContextExtractors(t *testing.T) {
	t.Parallel()

	type key string
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextValue("request_id", key("rid")),
		logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
			if env := environment.FromContext(ctx); env != "" {
				return slog.String("env", env.String()), true
			}
			return slog.Attr{}, false
		}),
	)

	ctx := context.WithValue(context.Background(), key("rid"), "r-42")
	ctx = environment.WithContext(ctx, environment.Staging)
	log.InfoContext(ctx, "msg")

	entry := decodeLine(t, buf)
	assert.Equal(t, "r-42", entry["request_id"])
	assert.Equal(t, "staging", entry["env"])
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decodeLine(t, buf)["msg"])
}

func TestWithFormat_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		wantJSON  bool
		wantEnv   string
		wantDebug bool
	}{
		{env: "prod", wantJSON: true, wantEnv: "production"},
		{env: "staging", wantJSON: true, wantEnv: "staging"},
		{env: "local", wantEnv: "development", wantDebug: true},
		{env: "", wantEnv: "development", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.wantEnv+"/"+tt.env, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "fsmdemo"), logger.WithOutput(buf))
			log.Debug("leaving state")
			if tt.wantDebug {
				assert.Contains(t, buf.String(), "DEBUG")
			} else {
				assert.Empty(t, buf.String())
			}

			buf.Reset()
			log.Info("msg")
			if !tt.wantJSON {
				assert.Contains(t, buf.String(), "env="+tt.wantEnv)
				assert.Contains(t, buf.String(), "service=fsmdemo")
				return
			}
			entry := decodeLine(t, buf)
			assert.Equal(t, tt.wantEnv, entry["env"])
			assert.Equal(t, "fsmdemo", entry["service"])
		})
	}
}

func TestWithEnvironment_EmptyServiceKeepsDefaults(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	log := logger.New(logger.WithDevelopment(""), logger.WithOutput(buf))
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}
