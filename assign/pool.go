package assign

import (
	"fmt"
	"sync"
)

// targetShape is the key a pool of targets is registered under
type targetShape struct {
	batch      int
	height     int
	width      int
	anchors    int
	numClasses int
}

// TargetPool holds a set of sync.Pools of Target arenas keyed by shape so
// training loops can reuse targets between batches
type TargetPool struct {
	mu    sync.Mutex
	pools map[targetShape]*sync.Pool
}

// NewTargetPool returns an empty TargetPool
func NewTargetPool() *TargetPool {
	return &TargetPool{
		pools: make(map[targetShape]*sync.Pool),
	}
}

// Get returns a zeroed Target of the given shape, allocating one when the
// pool for the shape is empty
func (p *TargetPool) Get(batch, height, width, anchors, numClasses int) *Target {

	key := targetShape{batch, height, width, anchors, numClasses}

	p.mu.Lock()
	pool, ok := p.pools[key]

	if !ok {
		pool = &sync.Pool{
			New: func() any {
				return NewTarget(batch, height, width, anchors, numClasses)
			},
		}
		p.pools[key] = pool
	}
	p.mu.Unlock()

	t := pool.Get().(*Target)
	t.Reset()

	return t
}

// Put returns a Target to the pool matching its shape.  The caller must not
// use the Target afterwards
func (p *TargetPool) Put(t *Target) error {

	if t == nil {
		return nil
	}

	if len(t.Data) != t.Len() {
		return fmt.Errorf("target arena of %d elements does not match shape %v",
			len(t.Data), t.Shape())
	}

	key := targetShape{t.Batch, t.Height, t.Width, t.Anchors, t.NumClasses()}

	p.mu.Lock()
	pool, ok := p.pools[key]
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("no target pool registered for shape %v", t.Shape())
	}

	pool.Put(t)
	return nil
}
