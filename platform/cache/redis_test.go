package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisCfg struct {
	url      string
	insecure bool
}

func (c redisCfg) GetRedisURL() string       { return c.url }
func (c redisCfg) GetRedisTLSInsecure() bool { return c.insecure }

func TestParseRedisURL(t *testing.T) {
	opt, err := ParseRedisURL("redis://:pw@localhost:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	opt, err = ParseRedisURL("redis://localhost:6379/0", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

func TestNewRedis(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), redisCfg{url: "redis://" + srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisRequiresURL(t *testing.T) {
	_, err := NewRedis(context.Background(), redisCfg{})
	require.Error(t, err)
}

func TestPingAdapter(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), redisCfg{url: "redis://" + srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	check := NewPingAdapter(client)
	require.NoError(t, check.Ping(context.Background()))

	srv.Close()
	assert.Error(t, check.Ping(context.Background()))
}
