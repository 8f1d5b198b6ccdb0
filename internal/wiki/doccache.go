package wiki

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// docCache keeps the most recently fetched documents so that titling an
// article and then reading its first link costs one request.
type docCache struct {
	mu    sync.Mutex
	size  int
	order []string
	docs  map[string]*goquery.Document
}

func newDocCache(size int) *docCache {
	return &docCache{size: size, docs: make(map[string]*goquery.Document, size)}
}

func (c *docCache) get(locator string) (*goquery.Document, bool) {
	if c.size <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[locator]
	return doc, ok
}

func (c *docCache) put(locator string, doc *goquery.Document) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[locator]; ok {
		c.docs[locator] = doc
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.docs, oldest)
	}
	c.order = append(c.order, locator)
	c.docs[locator] = doc
}
