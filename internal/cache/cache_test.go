// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("voyage:1", "Rotterdam -> Singapore")

	v, ok := c.Get("voyage:1")
	assert.True(t, ok)
	assert.Equal(t, "Rotterdam -> Singapore", v)

	_, ok = c.Get("voyage:2")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("k", 1)

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)

	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%3)
			c.Set(key, n)
			c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 3, c.Stats().Keys)
}
