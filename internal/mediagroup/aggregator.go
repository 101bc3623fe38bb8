// Package mediagroup collapses Telegram albums. Telegram delivers each photo
// of an album as its own update sharing a media group id; the collector
// waits for the album to go quiet and hands it over once.
package mediagroup

import (
	"fmt"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	MediaGroupID string
	FileID       string
}

// Album is every file of one media group in arrival order.
type Album struct {
	ChatID  int64
	UserID  int64
	FileIDs []string
}

// First is the file the portrait flow uses.
func (a Album) First() string {
	if len(a.FileIDs) == 0 {
		return ""
	}
	return a.FileIDs[0]
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Album)
}

type Collector struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Album)
	pending  map[string]*pendingAlbum
}

type pendingAlbum struct {
	album Album
	timer *time.Timer
}

func New(opts Options) *Collector {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Collector{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pendingAlbum),
	}
}

// Add queues item and reports whether it belongs to an album. Items without
// a media group id are left to the caller.
func (c *Collector) Add(item Item) bool {
	if item.MediaGroupID == "" || item.FileID == "" {
		return false
	}

	key := fmt.Sprintf("%d:%d:%s", item.ChatID, item.UserID, item.MediaGroupID)

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[key]
	if !ok {
		p = &pendingAlbum{album: Album{ChatID: item.ChatID, UserID: item.UserID}}
		c.pending[key] = p
	}
	p.album.FileIDs = append(p.album.FileIDs, item.FileID)

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(c.debounce, func() {
		c.flush(key)
	})
	return true
}

func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Stop drops albums still waiting for their debounce.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, key)
	}
}

func (c *Collector) flush(key string) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	album := p.album
	onFlush := c.onFlush
	c.mu.Unlock()

	if onFlush != nil {
		onFlush(album)
	}
}
