package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache_GetSet(t *testing.T) {
	c := NewResponseCache(time.Minute)

	_, ok := c.Get("prompt")
	assert.False(t, ok)

	c.Set("prompt", `[{"name":"a"}]`)
	got, ok := c.Get("prompt")
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"a"}]`, got)

	_, ok = c.Get("other prompt")
	assert.False(t, ok)
}

func TestResponseCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	c.Set("b", "2")

	now = now.Add(30 * time.Second)
	c.Set("b", "2") // refreshed

	now = now.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "a is 75s old")
	_, ok = c.Get("b")
	assert.True(t, ok, "b is 45s old")

	c.CleanExpired()
	assert.Equal(t, 1, c.Len())
}
