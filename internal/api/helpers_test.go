package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/forecast"
	"smart-orchard-backend/internal/model"
	"smart-orchard-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubForecaster struct {
	values map[forecast.Signal][]float64
	err    error
}

func (f *stubForecaster) Forecast(_ context.Context, s forecast.Signal) ([]float64, error) {
	return f.values[s], f.err
}

func (f *stubForecaster) ForecastAll(context.Context) (map[forecast.Signal][]float64, error) {
	return f.values, f.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gormDB.AutoMigrate(&model.SensorReading{}, &model.ControlCommand{}, &model.PushSubscription{}))
	return store.NewGormStore(gormDB)
}

func newTestRouter(s store.Store, f Forecaster, opts *webpush.Options) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(s, f, opts, 20, logger)
	return NewRouter(h, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}, logger)
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
