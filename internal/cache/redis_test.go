package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.err)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func TestClient_SetGet(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := &Client{store: mock}

	require.NoError(t, c.Set(ctx, "catalog", `[{"ref":"antrieb"}]`, time.Minute))
	assert.Equal(t, time.Minute, mock.ttls["wk:catalog"])

	value, err := c.Get(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, `[{"ref":"antrieb"}]`, value)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestClient_Incr(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := &Client{store: mock}

	n, err := c.Incr(ctx, "catalog:version")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "catalog:version")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	value, err := c.Get(ctx, "catalog:version")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.err = errors.New("connection refused")
	c := &Client{store: mock}

	_, err := c.Get(ctx, "catalog")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Error(t, c.Ping(ctx))
	_, err = c.Incr(ctx, "catalog:version")
	assert.Error(t, err)

	var uninitialized *Client
	_, err = uninitialized.Get(ctx, "x")
	assert.Error(t, err)
	assert.NoError(t, uninitialized.Close())
}

func TestClient_Key(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "wk:catalog:v1", c.Key("catalog", "v1"))
	assert.Equal(t, "wk:catalog", c.Key("catalog", " ", ""))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(&config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(&config.RedisConfig{URL: "redis://cache:6379/2", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = optionsFromConfig(&config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
}
