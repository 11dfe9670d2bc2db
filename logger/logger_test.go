package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := SetupWriter(&buf, false)

	r := gin.New()
	r.Use(Requests(l))
	r.GET("/items/:id", func(c *gin.Context) {
		Ctx(c.Request.Context()).Info().Msg("inside")
		c.Set("user_id", uint(7))
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/3", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	require.Equal(t, "inside", lines[0]["message"])
	require.Equal(t, "/items/:id", lines[0]["path"])

	require.Equal(t, "http request", lines[1]["message"])
	require.Equal(t, "warn", lines[1]["level"])
	require.EqualValues(t, 404, lines[1]["status"])
	require.EqualValues(t, 7, lines[1]["user_id"])
}

func TestSetupWriter_levels(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, false)
	l.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())

	require.Equal(t, zerolog.DebugLevel, SetupWriter(&buf, true).GetLevel())
}

func TestCron(t *testing.T) {
	var buf bytes.Buffer
	c := NewCron(SetupWriter(&buf, false))
	c.Error(errors.New("boom"), "job failed", "job", "expire")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "cron", lines[0]["component"])
	require.Equal(t, "boom", lines[0]["error"])
	require.Equal(t, "expire", lines[0]["job"])
}

func TestGorm_trace(t *testing.T) {
	var buf bytes.Buffer
	g := NewGorm(SetupWriter(&buf, false), false)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	g.Trace(context.Background(), time.Now(), fc, nil)
	require.Zero(t, buf.Len(), "fast queries are not logged at warn level")

	g.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	require.Zero(t, buf.Len(), "not found is not an error")

	g.Trace(context.Background(), time.Now(), fc, errors.New("syntax error"))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "SELECT 1", lines[0]["sql"])

	buf.Reset()
	g.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), fc, errors.New("x"))
	require.Zero(t, buf.Len())
}
