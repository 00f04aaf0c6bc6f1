package store

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"hidecan/internal/genome"
)

// DatasetCache keeps parsed datasets in memory so repeated renders do not
// re-read feature rows from sqlite.
type DatasetCache interface {
	Put(ctx context.Context, id string, ds genome.Dataset) error
	Get(ctx context.Context, id string) (genome.Dataset, bool)
	Invalidate(ctx context.Context, id string)
}

// MemoryDatasetCache is a sharded in-memory DatasetCache.
type MemoryDatasetCache struct {
	shards []datasetShard
}

type datasetShard struct {
	mu   sync.RWMutex
	data map[string]genome.Dataset
}

const defaultShardCount = 16

func NewMemoryDatasetCache() *MemoryDatasetCache {
	return newMemoryDatasetCache(defaultShardCount)
}

func newMemoryDatasetCache(shards int) *MemoryDatasetCache {
	if shards <= 0 {
		shards = 1
	}
	out := &MemoryDatasetCache{shards: make([]datasetShard, shards)}
	for i := range out.shards {
		out.shards[i] = datasetShard{data: make(map[string]genome.Dataset)}
	}
	return out
}

func (c *MemoryDatasetCache) shardFor(key string) *datasetShard {
	idx := hashKey(key) % uint32(len(c.shards))
	return &c.shards[idx]
}

func (c *MemoryDatasetCache) Put(ctx context.Context, id string, ds genome.Dataset) error {
	if id == "" {
		return errors.New("dataset cache: id cannot be empty")
	}
	sh := c.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cp := ds
	cp.Features = append([]genome.Feature(nil), ds.Features...)
	sh.data[id] = cp
	return nil
}

func (c *MemoryDatasetCache) Get(ctx context.Context, id string) (genome.Dataset, bool) {
	sh := c.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	ds, ok := sh.data[id]
	if !ok {
		return genome.Dataset{}, false
	}
	out := ds
	out.Features = append([]genome.Feature(nil), ds.Features...)
	return out, true
}

func (c *MemoryDatasetCache) Invalidate(ctx context.Context, id string) {
	sh := c.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.data, id)
}

func hashKey(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
