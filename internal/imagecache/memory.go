package imagecache

import (
	"container/list"
	"image"
	"sync"
)

// Entry is one decoded thumbnail and the bytes it accounts for.
type Entry struct {
	Image image.Image
	Size  int
}

// SizeOf estimates the resident size of img in bytes.
func SizeOf(img image.Image) int {
	switch v := img.(type) {
	case nil:
		return 0
	case *image.RGBA:
		return len(v.Pix)
	case *image.NRGBA:
		return len(v.Pix)
	case *image.Gray:
		return len(v.Pix)
	default:
		b := img.Bounds()
		return b.Dx() * b.Dy() * 4
	}
}

// NewEntry wraps img with its computed size.
func NewEntry(img image.Image) Entry {
	return Entry{Image: img, Size: SizeOf(img)}
}

type memItem struct {
	key   string
	entry Entry
}

// Memory is a size-bounded LRU of decoded thumbnails. All operations take
// a single mutex, so a Get never observes a half-inserted entry.
//
// Pinned keys are never evicted. While pins are held the resident size may
// exceed the budget; Unpin trims it back.
type Memory struct {
	mu        sync.Mutex
	budget    int
	size      int
	order     *list.List // front = most recently used
	items     map[string]*list.Element
	pins      map[string]int
	evictions uint64
}

// NewMemory returns an empty cache holding at most budget bytes.
func NewMemory(budget int) *Memory {
	if budget < 0 {
		budget = 0
	}
	return &Memory{
		budget: budget,
		order:  list.New(),
		items:  make(map[string]*list.Element),
		pins:   make(map[string]int),
	}
}

// Get returns the entry for key and marks it most recently used.
func (m *Memory) Get(key string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return Entry{}, false
	}
	m.order.MoveToFront(el)
	return el.Value.(*memItem).entry, true
}

// Put inserts or replaces the entry for key and evicts least recently used
// entries until the total fits the budget. An entry larger than the whole
// budget is not stored (any previous entry for key is dropped) and Put
// reports false.
func (m *Memory) Put(key string, e Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Size < 0 {
		e.Size = 0
	}
	if el, ok := m.items[key]; ok {
		m.removeElement(el)
	}
	if e.Size > m.budget {
		return false
	}
	el := m.order.PushFront(&memItem{key: key, entry: e})
	m.items[key] = el
	m.size += e.Size
	m.evictLocked()
	return true
}

// Remove drops key from the cache.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.removeElement(el)
	}
}

// Clear drops every entry. Pins survive so in-flight deliveries keep their
// protection for the entries they are about to store.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order.Init()
	clear(m.items)
	m.size = 0
}

// Pin protects key from eviction until a matching Unpin. Pins nest.
func (m *Memory) Pin(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[key]++
}

// Unpin releases one pin on key and trims the cache back under budget.
func (m *Memory) Unpin(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.pins[key]
	if !ok {
		return
	}
	if n <= 1 {
		delete(m.pins, key)
	} else {
		m.pins[key] = n - 1
	}
	m.evictLocked()
}

// Len returns the number of resident entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Size returns the resident size in bytes.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Budget returns the configured budget in bytes.
func (m *Memory) Budget() int {
	return m.budget
}

// Evictions returns how many entries have been evicted for space.
func (m *Memory) Evictions() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictions
}

// Keys returns resident keys from most to least recently used.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.items))
	for el := m.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*memItem).key)
	}
	return keys
}

func (m *Memory) evictLocked() {
	el := m.order.Back()
	for m.size > m.budget && el != nil {
		prev := el.Prev()
		if item := el.Value.(*memItem); m.pins[item.key] == 0 {
			m.removeElement(el)
			m.evictions++
		}
		el = prev
	}
}

func (m *Memory) removeElement(el *list.Element) {
	item := m.order.Remove(el).(*memItem)
	delete(m.items, item.key)
	m.size -= item.entry.Size
}
