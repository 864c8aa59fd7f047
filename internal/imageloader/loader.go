package imageloader

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/five82/rolodex/internal/imagecache"
)

const (
	// DefaultWorkers is the decode pool size when Config.Workers is zero.
	DefaultWorkers = 3
	// DefaultMissTTL is how long a failed key is answered with the
	// placeholder without retrying.
	DefaultMissTTL = 30 * time.Second
)

// Slot is an opaque handle for one display position. The host picks the
// values; the loader only compares them.
type Slot int

// Decoder turns a cache key into a decoded image. It runs on pool workers.
type Decoder interface {
	Decode(ctx context.Context, key string) (image.Image, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, key string) (image.Image, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, key string) (image.Image, error) {
	return f(ctx, key)
}

// Cache is the slice of imagecache.Cache the loader needs.
type Cache interface {
	Get(key string) (imagecache.Entry, bool)
	Lookup(key string) (imagecache.Entry, bool)
	Put(key string, e imagecache.Entry)
	Pin(key string)
	Unpin(key string)
}

// Delivery is a finished request for one slot. Deliveries are produced on
// worker goroutines; the host hands each one to Accept on its display
// thread before binding it.
type Delivery struct {
	Slot        Slot
	Key         string
	Image       image.Image
	Placeholder bool
	Generation  uint64
}

// Result is the synchronous answer to LoadImage.
type Result struct {
	// Image is the bitmap to show now: the cached image on a hit, the
	// placeholder otherwise.
	Image image.Image
	// Hit reports a memory cache hit. No work was scheduled.
	Hit bool
	// Pending reports that a Delivery will follow for this slot.
	Pending bool
}

// Config wires a Loader. Decoder and Deliver are required.
type Config struct {
	Decoder Decoder
	Deliver func(Delivery)

	// Cache defaults to a memory-only imagecache with the default budget.
	Cache Cache

	// Workers is the decode pool size. Defaults to DefaultWorkers.
	Workers int

	// Placeholder is shown for empty keys, failures and pending loads.
	Placeholder image.Image

	// MissTTL suppresses retries of failed keys. Zero uses
	// DefaultMissTTL; negative disables the negative cache.
	MissTTL time.Duration

	Logger *slog.Logger
}

// ConfigError reports a missing required capability.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("imageloader: %s is required", e.Field)
}

// Stats is a snapshot of loader activity.
type Stats struct {
	Workers   int
	Queued    int
	Running   int
	InFlight  int
	Decodes   uint64
	DiskHits  uint64
	Failures  uint64
	Delivered uint64
	Dropped   uint64
	Paused    bool
}

type binding struct {
	key string
	gen uint64
}

type request struct {
	key     string
	waiters map[Slot]uint64
}

// Loader runs decode work on a fixed pool and hands results back through
// Deliver. At most one decode per key is active; additional slots asking
// for the same key wait on the existing request.
type Loader struct {
	decoder     Decoder
	deliver     func(Delivery)
	cache       Cache
	placeholder image.Image
	misses      *cache.Cache
	logger      *slog.Logger
	workers     int

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu       sync.Mutex
	wake     *sync.Cond
	bindings map[Slot]binding
	nextGen  uint64
	inflight map[string]*request
	queue    []*request
	paused   bool
	closed   bool
	stats    Stats

	closeOnce sync.Once
	closeErr  error
}

// New validates cfg and starts the worker pool.
func New(cfg Config) (*Loader, error) {
	if cfg.Decoder == nil {
		return nil, &ConfigError{Field: "Decoder"}
	}
	if cfg.Deliver == nil {
		return nil, &ConfigError{Field: "Deliver"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := cfg.Cache
	if c == nil {
		mem, err := imagecache.New(imagecache.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
		c = mem
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	l := &Loader{
		decoder:     cfg.Decoder,
		deliver:     cfg.Deliver,
		cache:       c,
		placeholder: cfg.Placeholder,
		logger:      logger,
		workers:     workers,
		bindings:    make(map[Slot]binding),
		inflight:    make(map[string]*request),
	}
	l.wake = sync.NewCond(&l.mu)
	switch ttl := cfg.MissTTL; {
	case ttl == 0:
		l.misses = cache.New(DefaultMissTTL, 2*DefaultMissTTL)
	case ttl > 0:
		l.misses = cache.New(ttl, 2*ttl)
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.group, l.ctx = errgroup.WithContext(l.ctx)
	for range workers {
		l.group.Go(l.work)
	}
	logger.Debug("image loader started", "workers", workers)
	return l, nil
}

// LoadImage binds slot to key. A memory hit is returned immediately. An
// empty key or a recently failed one returns the placeholder with no work
// scheduled. Otherwise the slot waits on the key's request, creating and
// queueing it when none is in flight. Rebinding a slot invalidates its
// interest in whatever it was waiting for before.
func (l *Loader) LoadImage(key string, slot Slot) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextGen++
	gen := l.nextGen
	l.bindings[slot] = binding{key: key, gen: gen}

	if key == "" || l.closed {
		return Result{Image: l.placeholder}
	}
	if e, ok := l.cache.Get(key); ok {
		return Result{Image: e.Image, Hit: true}
	}
	if l.misses != nil {
		if _, failed := l.misses.Get(key); failed {
			return Result{Image: l.placeholder}
		}
	}
	if req, ok := l.inflight[key]; ok {
		req.waiters[slot] = gen
		return Result{Image: l.placeholder, Pending: true}
	}

	req := &request{key: key, waiters: map[Slot]uint64{slot: gen}}
	l.inflight[key] = req
	l.queue = append(l.queue, req)
	l.wake.Signal()
	return Result{Image: l.placeholder, Pending: true}
}

// Accept reports whether d is still wanted: its slot is bound to the same
// key by the same LoadImage call that registered it. The host calls this
// on the display thread immediately before binding, so the last bound key
// always wins.
func (l *Loader) Accept(d Delivery) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bindings[d.Slot]
	if !ok || b.gen != d.Generation || b.key != d.Key {
		l.stats.Dropped++
		return false
	}
	l.stats.Delivered++
	return true
}

// Unbind forgets slot. Pending deliveries for it will be dropped.
func (l *Loader) Unbind(slot Slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.bindings, slot)
}

// SetPauseWork holds queued requests while paused. Running decodes finish
// normally.
func (l *Loader) SetPauseWork(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused == paused {
		return
	}
	l.paused = paused
	if !paused {
		l.wake.Broadcast()
	}
}

// Paused reports the pause state.
func (l *Loader) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// ForgetMisses drops the negative cache so failed keys are retried.
func (l *Loader) ForgetMisses() {
	if l.misses != nil {
		l.misses.Flush()
	}
}

// Stats returns loader counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.stats
	st.Workers = l.workers
	st.Queued = len(l.queue)
	st.InFlight = len(l.inflight)
	st.Paused = l.paused
	return st
}

// Close stops the pool. Queued requests are discarded; running decodes see
// their context cancelled and their results are not delivered.
func (l *Loader) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.wake.Broadcast()
		l.mu.Unlock()

		l.cancel()
		l.closeErr = l.group.Wait()
		l.logger.Debug("image loader stopped")
	})
	return l.closeErr
}

func (l *Loader) work() error {
	for {
		req, ok := l.next()
		if !ok {
			return nil
		}
		l.process(req)
	}
}

// next blocks until a request may start. It returns false once closed.
func (l *Loader) next() (*request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for !l.closed && (l.paused || len(l.queue) == 0) {
		l.wake.Wait()
	}
	if l.closed {
		return nil, false
	}
	req := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.stats.Running++
	return req, true
}

func (l *Loader) process(req *request) {
	img, fromDisk, err := l.load(req.key)

	if err == nil {
		l.cache.Pin(req.key)
		defer l.cache.Unpin(req.key)
		if !fromDisk {
			l.cache.Put(req.key, imagecache.NewEntry(img))
		}
	} else {
		if l.misses != nil {
			l.misses.SetDefault(req.key, struct{}{})
		}
		l.logger.Debug("image decode failed", "key", req.key, "error", err)
	}

	l.mu.Lock()
	l.stats.Running--
	if err == nil {
		if fromDisk {
			l.stats.DiskHits++
		} else {
			l.stats.Decodes++
		}
	} else {
		l.stats.Failures++
	}
	delete(l.inflight, req.key)
	closed := l.closed
	var out []Delivery
	for slot, gen := range req.waiters {
		if b, ok := l.bindings[slot]; !ok || b.gen != gen {
			l.stats.Dropped++
			continue
		}
		d := Delivery{Slot: slot, Key: req.key, Image: img, Generation: gen}
		if err != nil {
			d.Image = l.placeholder
			d.Placeholder = true
		}
		out = append(out, d)
	}
	l.mu.Unlock()

	if closed {
		return
	}
	for _, d := range out {
		l.deliver(d)
	}
}

// load consults the disk level and then the decoder. A panicking decoder
// is reported as an error.
func (l *Loader) load(key string) (img image.Image, fromDisk bool, err error) {
	if e, ok := l.cache.Lookup(key); ok {
		return e.Image, true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	img, err = l.decoder.Decode(l.ctx, key)
	if err == nil && img == nil {
		err = fmt.Errorf("decoder returned no image")
	}
	return img, false, err
}
