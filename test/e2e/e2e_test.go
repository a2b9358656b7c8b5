// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-workers/internal/common/config"
	"transcript-workers/internal/common/database"
	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/common/nlu"
	"transcript-workers/internal/extraction"
	"transcript-workers/internal/models"
	"transcript-workers/internal/store"
	ln "transcript-workers/internal/workers/intake/lookup-normalization"
	nt "transcript-workers/internal/workers/intake/normalize-transcript"
)

const prediction = `{
  "query": "i need a cleaning on may 2nd 2024 at 3 pm",
  "topScoringIntent": {"intent": "BookAppointment", "score": 0.91},
  "entities": [
    {"entity": "may 2nd 2024 at 3 pm", "type": "builtin.datetimeV2.datetime", "startIndex": 21, "endIndex": 40,
     "resolution": {"values": [{"timex": "2024-05-02T15", "type": "datetime", "value": "2024-05-02 15:00:00"}]}}
  ]
}`

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

type environment struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	store *store.PostgresResultStore
	cache *store.RedisResultCache
}

// setup connects to the Postgres and Redis instances from docker-compose.
// The test is skipped when they are not reachable.
func setup(t *testing.T) *environment {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(config.PostgresConfig{
		Host:           getEnv("E2E_POSTGRES_HOST", "localhost"),
		Port:           5432,
		Database:       getEnv("E2E_POSTGRES_DB", "transcripts"),
		User:           getEnv("E2E_POSTGRES_USER", "postgres"),
		Password:       getEnv("E2E_POSTGRES_PASSWORD", "postgres"),
		SSLMode:        "disable",
		MaxConnections: 5,
		MaxIdle:        2,
	})
	require.NoError(t, err)
	if err := pg.Ping(ctx); err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(config.RedisConfig{Address: getEnv("E2E_REDIS_ADDR", "localhost:6379")})
	require.NoError(t, err)
	if err := rdb.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	s := store.NewPostgresResultStore(pg.DB)
	require.NoError(t, s.EnsureSchema(ctx))

	return &environment{
		pg:    pg,
		redis: rdb,
		store: s,
		cache: store.NewRedisResultCache(rdb.Client, time.Minute),
	}
}

func TestNormalizeThenLookup(t *testing.T) {
	env := setup(t)
	log := logger.NewTestLogger(t)

	nluServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(prediction))
	}))
	defer nluServer.Close()

	normalize := nt.NewHandler(&nt.Config{Timeout: 10 * time.Second}, nt.Dependencies{
		Engine: extraction.NewEngine(extraction.DefaultConfig(), log),
		NLU: nlu.NewClient(&nlu.Config{
			Endpoint: nluServer.URL,
			AppID:    "e2e",
			Timeout:  2 * time.Second,
		}, log),
		Store: env.store,
		Cache: env.cache,
	}, log)
	lookup := ln.NewHandler(&ln.Config{Timeout: 5 * time.Second}, env.store, env.cache, log)

	callID := fmt.Sprintf("e2e-%s", uuid.NewString())
	ctx := context.Background()

	out, err := normalize.Execute(ctx, &nt.Input{
		CallIdentifier: callID,
		Text:           "I need a cleaning on May 2nd 2024 at 3 pm!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.RecordID)
	assert.Equal(t, models.StatusOK, out.StatusCode)
	require.Len(t, out.Result.Dates, 1)
	assert.Equal(t, 2024, out.Result.Dates[0].Year)
	assert.Equal(t, 15, out.Result.Dates[0].Hour)

	cached, err := lookup.Execute(ctx, &ln.Input{CallIdentifier: callID})
	require.NoError(t, err)
	assert.Equal(t, ln.SourceCache, cached.Source)
	assert.Equal(t, out.RecordID, cached.RecordID)

	require.NoError(t, env.redis.Client.Del(ctx, store.CacheKey(callID)).Err())

	fromDB, err := lookup.Execute(ctx, &ln.Input{CallIdentifier: callID})
	require.NoError(t, err)
	assert.Equal(t, ln.SourceDatabase, fromDB.Source)
	assert.Equal(t, out.RecordID, fromDB.RecordID)
	require.NotNil(t, fromDB.Result.Intent)
	assert.Equal(t, "BookAppointment", *fromDB.Result.Intent)

	// Re-normalizing the same call keeps the record id.
	again, err := normalize.Execute(ctx, &nt.Input{CallIdentifier: callID, Text: "I need a cleaning on May 2nd 2024 at 3 pm"})
	require.NoError(t, err)
	assert.Equal(t, out.RecordID, again.RecordID)
}

func TestLookupUnknownCall(t *testing.T) {
	env := setup(t)
	lookup := ln.NewHandler(&ln.Config{Timeout: 5 * time.Second}, env.store, env.cache, logger.NewTestLogger(t))

	_, err := lookup.Execute(context.Background(), &ln.Input{CallIdentifier: "e2e-missing-" + uuid.NewString()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESULT_NOT_FOUND")
}
