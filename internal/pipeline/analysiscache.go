package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"ninjaengine/internal/cacheutil"
)

// analysisCacheKeyPrefix namespaces the analysis cache, keyed at
// (call_id, analysis_type) granularity per spec.md §4.7.
const analysisCacheKeyPrefix = "analysis:"

func analysisCacheKey(callID, analysisType string) string {
	return analysisCacheKeyPrefix + callID + ":" + analysisType
}

// AnalysisCache is a thin read-through wrapper over cacheutil.Store,
// scoped to the (call_id, analysis_type) key shape.
type AnalysisCache struct {
	store cacheutil.Store
	ttl   time.Duration
}

// NewAnalysisCache builds an AnalysisCache. store may be nil, in which
// case every read is a miss and every write is a no-op.
func NewAnalysisCache(store cacheutil.Store, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{store: store, ttl: ttl}
}

// Get reads and decodes a cached analysis payload for (callID, analysisType).
func (c *AnalysisCache) Get(ctx context.Context, callID, analysisType string, out any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	raw, ok, err := c.store.Get(ctx, analysisCacheKey(callID, analysisType))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, err
	}
	return true, nil
}

// Set encodes and writes an analysis payload for (callID, analysisType).
func (c *AnalysisCache) Set(ctx context.Context, callID, analysisType string, payload any) error {
	if c.store == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, analysisCacheKey(callID, analysisType), string(data), c.ttl)
}

// HasAll reports whether every requested analysis type is already
// cached for callID; a pipeline run that finds all requested types
// cached returns immediately per spec.md §4.7.
func (c *AnalysisCache) HasAll(ctx context.Context, callID string, analysisTypes []string) bool {
	if c.store == nil {
		return false
	}
	for _, t := range analysisTypes {
		_, ok, err := c.store.Get(ctx, analysisCacheKey(callID, t))
		if err != nil || !ok {
			return false
		}
	}
	return true
}
