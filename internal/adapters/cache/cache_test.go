package cache

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"
	"travel-fare-service/internal/adapters/repositories"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/db"
	"travel-fare-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bandung = domain.Coordinates{Lat: -6.9175, Lon: 107.6191}
	jakarta = domain.Coordinates{Lat: -6.2088, Lon: 106.8456}
)

// exerciseGeocodeCache runs the behavior every GeocodeCache must share.
func exerciseGeocodeCache(t *testing.T, c ports.GeocodeCache) {
	t.Helper()
	ctx := context.Background()

	got, err := c.GetMany(ctx, []string{"Bandung"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"Bandung":   bandung,
		" Jakarta ": jakarta,
	}))

	got, err = c.GetMany(ctx, []string{"Bandung", "Jakarta", "Bandung", "", "Surabaya"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"Bandung": bandung, "Jakarta": jakarta}, got)

	moved := domain.Coordinates{Lat: -6.9, Lon: 107.6}
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"Bandung": moved}))

	got, err = c.GetMany(ctx, []string{"Bandung"})
	require.NoError(t, err)
	assert.Equal(t, moved, got["Bandung"])

	got, err = c.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryGeocodeCache(t *testing.T) {
	c := NewMemoryGeocodeCache()
	exerciseGeocodeCache(t, c)
	assert.Equal(t, 2, c.Len())
}

func TestSqliteGeocodeCache(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSqliteSchema(ctx, conn))

	exerciseGeocodeCache(t, NewSqliteGeocodeCache(conn, nil))
}

func openTestPostgres(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := db.OpenPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitPostgresSchema(ctx, conn))

	truncate := func() {
		_, err := conn.ExecContext(ctx, "DELETE FROM geocode_cache")
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)
	return conn
}

func TestPostgresGeocodeCache(t *testing.T) {
	exerciseGeocodeCache(t, NewPostgresGeocodeCache(openTestPostgres(t), nil))
}

func TestSQLGeocodeCachesNilDB(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]ports.GeocodeCache{
		"sqlite":   NewSqliteGeocodeCache(nil, nil),
		"postgres": NewPostgresGeocodeCache(nil, nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.GetMany(ctx, []string{"Bandung"})
			assert.Error(t, err)
			assert.Error(t, c.PutMany(ctx, map[string]domain.Coordinates{"Bandung": bandung}))
		})
	}
}

func TestRedisGeocodeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisGeocodeCache(rdb, time.Hour, nil)
	exerciseGeocodeCache(t, c)

	assert.True(t, mr.Exists("geocode:Bandung"))
	assert.Equal(t, time.Hour, mr.TTL("geocode:Jakarta"))

	mr.FastForward(2 * time.Hour)
	got, err := c.GetMany(context.Background(), []string{"Bandung"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, mr.Set("geocode:Bandung", "not json"))

	_, err := NewRedisGeocodeCache(rdb, 0, nil).GetMany(context.Background(), []string{"Bandung"})
	assert.Error(t, err)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("http://nope")
	assert.Error(t, err)
}
