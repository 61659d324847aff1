package service

import (
	"container/list"
	"sync"
)

// textCache is a thread-safe LRU of extracted paper text.
type textCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
}

type textCacheEntry struct {
	key   string
	value string
}

func newTextCache(capacity int) *textCache {
	if capacity <= 0 {
		capacity = 32
	}
	return &textCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *textCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*textCacheEntry).value, true
	}
	return "", false
}

func (c *textCache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*textCacheEntry).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			delete(c.items, back.Value.(*textCacheEntry).key)
			c.order.Remove(back)
		}
	}
	c.items[key] = c.order.PushFront(&textCacheEntry{key: key, value: value})
}

func (c *textCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
