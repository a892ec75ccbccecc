package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/api/models"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLoader) Load(ctx context.Context, source string) (*models.EventLog, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.err != nil {
		return nil, l.err
	}
	return models.NewEventLog(source, []models.EventRecord{
		models.NewEventRecord(time.Now(), models.EventTransferCreated, "u1", models.RegionEurope, models.PlatformIOS, models.ExperienceNew),
	}), nil
}

func TestSessionCache_LoadsOnce(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond}
	cache := NewSessionCache(loader)

	var wg sync.WaitGroup
	logs := make([]*models.EventLog, 8)
	for i := range logs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log, err := cache.Get(context.Background(), "events.csv")
			assert.NoError(t, err)
			logs[i] = log
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, log := range logs {
		assert.Same(t, logs[0], log)
	}

	again, err := cache.Get(context.Background(), "events.csv")
	require.NoError(t, err)
	assert.Same(t, logs[0], again)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestSessionCache_Invalidate(t *testing.T) {
	loader := &countingLoader{}
	cache := NewSessionCache(loader)

	first, err := cache.Get(context.Background(), "events.csv")
	require.NoError(t, err)

	cache.Invalidate("events.csv")

	second, err := cache.Get(context.Background(), "events.csv")
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.NotEqual(t, first.LoadID(), second.LoadID())
}

func TestSessionCache_ErrorsAreNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	cache := NewSessionCache(loader)

	_, err := cache.Get(context.Background(), "events.csv")
	require.Error(t, err)

	loader.err = nil
	log, err := cache.Get(context.Background(), "events.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, int32(2), loader.calls.Load())
}
