// Package notifications keeps the client's bounded, newest-first list of
// notifications and the unread counter shown in the header badge.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"tracker/internal/dto"
	"tracker/internal/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MaxEntries bounds the cached list; older entries fall off the tail.
const MaxEntries = 50

var (
	ErrNotFound = errors.New("notification not in cache")
	// ErrStale is returned when Reset ran while the request was outstanding;
	// its result was discarded.
	ErrStale = errors.New("cache was reset during request")
)

// API is the subset of the HTTP client the cache needs.
type API interface {
	ListNotifications(ctx context.Context, page int) (json.RawMessage, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}

type Entry struct {
	ID         string
	Type       model.NotificationType
	Title      string
	Content    string
	CreatedAt  time.Time
	Read       bool
	EntityID   string
	EntityType model.EntityKind
	// Local entries were added on this client and are unknown to the server.
	Local bool
}

type Snapshot struct {
	Entries []Entry
	Unread  int
	Loading bool
	Err     error
}

type Cache struct {
	api API
	log *log.Logger

	mu        sync.Mutex
	entries   []Entry
	unread    int
	loading   bool
	err       error
	gen       uint64
	listeners map[int]func(Snapshot)
	nextID    int
}

type Option func(*Cache)

func WithLogger(l *log.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func New(api API, opts ...Option) *Cache {
	c := &Cache{
		api:       api,
		log:       log.StandardLogger(),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Cache) Entries() []Entry { return c.Snapshot().Entries }
func (c *Cache) Unread() int      { return c.Snapshot().Unread }
func (c *Cache) Err() error       { return c.Snapshot().Err }

func (c *Cache) snapshotLocked() Snapshot {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return Snapshot{Entries: entries, Unread: c.unread, Loading: c.loading, Err: c.err}
}

func (c *Cache) unlockAndNotify() {
	snap := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Cache) indexLocked(id string) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Fetch replaces the cache with the server's first page. Local entries are
// dropped. A response that is neither a page envelope nor a list becomes a
// single system entry describing the problem.
func (c *Cache) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = nil
	gen := c.gen
	c.unlockAndNotify()

	raw, err := c.api.ListNotifications(ctx, 1)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.unlockAndNotify()
		return err
	}

	entries := decode(raw)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	c.entries = entries
	c.unread = 0
	for _, e := range entries {
		if !e.Read {
			c.unread++
		}
	}
	c.unlockAndNotify()
	return nil
}

// AddLocal puts e at the head of the list, filling in an ID and timestamp
// when missing, and returns the stored entry.
func (c *Cache) AddLocal(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Type == "" {
		e.Type = model.NotificationSystem
	}
	e.Local = true

	c.mu.Lock()
	c.entries = append([]Entry{e}, c.entries...)
	if !e.Read {
		c.unread++
	}
	// the counter tracks retained entries, so evicted unread ones leave it too
	for len(c.entries) > MaxEntries {
		last := c.entries[len(c.entries)-1]
		c.entries = c.entries[:len(c.entries)-1]
		if !last.Read && c.unread > 0 {
			c.unread--
		}
	}
	c.unlockAndNotify()
	return e
}

// MarkRead marks one entry read locally and on the server. If the server
// refuses, the entry becomes unread again and the error is returned.
func (c *Cache) MarkRead(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	if c.entries[i].Read {
		c.mu.Unlock()
		return nil
	}
	c.entries[i].Read = true
	if c.unread > 0 {
		c.unread--
	}
	local := c.entries[i].Local
	gen := c.gen
	c.unlockAndNotify()

	if local {
		return nil
	}

	err := c.api.MarkNotificationRead(ctx, id)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if gen == c.gen {
		if i := c.indexLocked(id); i >= 0 && c.entries[i].Read {
			c.entries[i].Read = false
			c.unread++
		}
		c.err = err
	}
	c.log.WithError(err).WithField("notification_id", id).Warn("mark read rolled back")
	c.unlockAndNotify()
	return err
}

// MarkAllRead marks everything read locally and on the server, restoring
// the previously unread entries if the server refuses.
func (c *Cache) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	var flipped []string
	for i := range c.entries {
		if !c.entries[i].Read {
			c.entries[i].Read = true
			flipped = append(flipped, c.entries[i].ID)
		}
	}
	c.unread = 0
	gen := c.gen
	c.unlockAndNotify()

	err := c.api.MarkAllNotificationsRead(ctx)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if gen == c.gen {
		for _, id := range flipped {
			if i := c.indexLocked(id); i >= 0 && c.entries[i].Read {
				c.entries[i].Read = false
				c.unread++
			}
		}
		c.err = err
	}
	c.log.WithError(err).Warn("mark all read rolled back")
	c.unlockAndNotify()
	return err
}

// ClearAll empties the cache once the server has deleted everything.
func (c *Cache) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	err := c.api.ClearNotifications(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		c.err = err
	} else {
		c.entries = nil
		c.unread = 0
	}
	c.unlockAndNotify()
	return err
}

func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = nil
	c.unread = 0
	c.loading = false
	c.err = nil
	c.gen++
	c.unlockAndNotify()
}

func decode(raw json.RawMessage) []Entry {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(trimmed, &envelope) == nil {
			if entries, ok := decodeList(envelope.Data); ok {
				return entries
			}
		}
	} else if entries, ok := decodeList(trimmed); ok {
		return entries
	}

	return []Entry{{
		ID:        uuid.NewString(),
		Type:      model.NotificationSystem,
		Title:     "Notifications unavailable",
		Content:   "The server returned notifications in an unexpected format.",
		CreatedAt: time.Now(),
		Local:     true,
	}}
}

func decodeList(raw json.RawMessage) ([]Entry, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []dto.Notification
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}

	entries := make([]Entry, 0, len(items))
	for _, n := range items {
		e := Entry{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
			Read:      n.Read,
		}
		if n.RelatedID != nil && n.RelatedType != nil {
			e.EntityID = *n.RelatedID
			e.EntityType = *n.RelatedType
		}
		entries = append(entries, e)
	}
	return entries, true
}
