package custos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixTime(t *testing.T) {
	now := time.Now()
	ut := AsUnixTime(now)
	assert.Equal(t, now.Unix(), int64(ut))
	assert.Equal(t, now.Unix(), ut.Time().Unix())

	assert.True(t, UnixTime(0).IsZero())
	assert.False(t, ut.IsZero())

	assert.Equal(t, ut+60, ut.Add(time.Minute))
	// sub-second durations truncate
	assert.Equal(t, ut, ut.Add(999*time.Millisecond))

	assert.NoError(t, ut.Validate())
	assert.Error(t, UnixTime(-5).Validate())
}

func TestUnixTimeJSON(t *testing.T) {
	var ut UnixTime
	require.NoError(t, json.Unmarshal([]byte(`1234567`), &ut))
	assert.Equal(t, UnixTime(1234567), ut)

	require.NoError(t, json.Unmarshal([]byte(`"2019-04-01T10:00:00Z"`), &ut))
	assert.Equal(t, AsUnixTime(time.Date(2019, 4, 1, 10, 0, 0, 0, time.UTC)), ut)

	assert.Error(t, json.Unmarshal([]byte(`-7`), &ut))
	assert.Error(t, json.Unmarshal([]byte(`"not a time"`), &ut))
}

func TestUnixDuration(t *testing.T) {
	d := AsUnixDuration(90 * time.Second)
	assert.Equal(t, UnixDuration(90), d)
	assert.Equal(t, 90*time.Second, d.Duration())
	assert.NoError(t, d.Validate())
	assert.Error(t, UnixDuration(-1).Validate())
}

func TestUnixDurationJSON(t *testing.T) {
	var d UnixDuration
	require.NoError(t, json.Unmarshal([]byte(`120`), &d))
	assert.Equal(t, UnixDuration(120), d)

	require.NoError(t, json.Unmarshal([]byte(`"2h"`), &d))
	assert.Equal(t, AsUnixDuration(2*time.Hour), d)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &d))
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	ctx := WithBlockTime(context.Background(), now)

	assert.True(t, IsExpired(ctx, AsUnixTime(now.Add(-time.Minute))))
	// expiration is inclusive
	assert.True(t, IsExpired(ctx, AsUnixTime(now)))
	assert.False(t, IsExpired(ctx, AsUnixTime(now.Add(time.Minute))))
}
