// Package cache holds session-scoped transcript segment lists so an editor
// session can find a wider list than the one passed in-memory. Best effort
// only: never authoritative over freshly supplied segments unless it covers
// more of the timeline.
package cache

import (
	"math"
	"sync"

	"clipforge-ai/internal/types"
)

type SegmentCache struct {
	entries sync.Map
}

func NewSegmentCache() *SegmentCache {
	return &SegmentCache{}
}

// Get returns the cached segment list for key, if any.
func (c *SegmentCache) Get(key string) ([]types.TranscriptSegment, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	return val.([]types.TranscriptSegment), true
}

// Put stores segments under key, keeping whichever of the stored and the new
// list covers more of the timeline. Coverage never shrinks.
func (c *SegmentCache) Put(key string, segments []types.TranscriptSegment) {
	if len(segments) == 0 {
		return
	}
	if existing, ok := c.Get(key); ok && coverage(existing) >= coverage(segments) {
		return
	}
	c.entries.Store(key, segments)
}

func (c *SegmentCache) Delete(key string) {
	c.entries.Delete(key)
}

func coverage(segments []types.TranscriptSegment) float64 {
	if len(segments) == 0 {
		return 0
	}
	minStart := math.Inf(1)
	maxEnd := math.Inf(-1)
	for _, seg := range segments {
		if seg.Start < minStart {
			minStart = seg.Start
		}
		if seg.End > maxEnd {
			maxEnd = seg.End
		}
	}
	return maxEnd - minStart
}
