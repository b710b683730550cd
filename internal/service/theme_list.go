package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
)

// ThemeEvent is the state delivered to theme list listeners: either a new
// cache state or a notice about a failed update.
type ThemeEvent struct {
	Themes   []model.Theme
	Loaded   bool
	Revision int64
	Notice   *model.Notice
}

// Filter applies a query to the event's themes.
func (e ThemeEvent) Filter(query string) FilterResult {
	return buildFilterResult(e.Themes, e.Loaded, query)
}

var (
	// ErrAlreadyStarted is returned by ThemeList.Start when called twice.
	ErrAlreadyStarted = errors.New("theme list already started")
	// ErrClosed is returned by ThemeList.Start after Close.
	ErrClosed = errors.New("theme list closed")
)

// ThemeList mirrors the themes collection through a live subscription and
// serves filtered views of it.
type ThemeList struct {
	store  model.DocumentStore
	logger *logger.Logger
	newKey func() (string, error)

	mu       sync.RWMutex
	themes   []model.Theme
	loaded   bool
	revision int64

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}

	listenersMu sync.Mutex
	listeners   map[int]chan ThemeEvent
	nextID      int
	closed      bool

	cascades sync.WaitGroup

	// beforeOffer runs in Listen between registration and the initial
	// offer. Tests only.
	beforeOffer func()
}

// NewThemeList creates a theme list backed by store.
func NewThemeList(store model.DocumentStore, logger *logger.Logger) *ThemeList {
	return &ThemeList{
		store:     store,
		logger:    logger,
		newKey:    newThemeKey,
		listeners: make(map[int]chan ThemeEvent),
	}
}

func newThemeKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Start opens the live subscription. Snapshots are applied until Close is
// called or ctx is cancelled.
func (l *ThemeList) Start(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.started {
		return ErrAlreadyStarted
	}
	if l.stopped {
		return ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := l.store.Subscribe(subCtx, model.CollectionThemes)
	if err != nil {
		cancel()
		l.logger.Error("Theme service: failed to subscribe to themes",
			"error", err.Error())
		l.notify(model.Notice{Message: MsgThemesLoadFailed})
		return readFailed(MsgThemesLoadFailed, err)
	}

	l.started = true
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.consume(subCtx, events, l.done)

	l.logger.Info("Theme service: subscription opened")
	return nil
}

func (l *ThemeList) consume(ctx context.Context, events <-chan model.SnapshotEvent, done chan struct{}) {
	defer close(done)

	for {
		var event model.SnapshotEvent
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				l.logger.Info("Theme service: subscription ended")
				return
			}
			event = ev
		}
		if ctx.Err() != nil {
			return
		}

		if event.Err != nil {
			l.logger.Error("Theme service: subscription update failed",
				"error", event.Err.Error())
			l.notify(model.Notice{Message: MsgThemesLoadFailed})
			continue
		}
		l.apply(event.Snapshot)
	}
}

// apply replaces the whole cache with the snapshot. Snapshots that are not
// newer than the applied one are dropped; a zero revision means the store
// does not track revisions and the snapshot is always applied.
func (l *ThemeList) apply(snapshot model.Snapshot) {
	themes := make([]model.Theme, 0, len(snapshot.Documents))
	for _, doc := range snapshot.Documents {
		themes = append(themes, model.ThemeFromDocument(doc))
	}

	l.mu.Lock()
	if l.loaded && snapshot.Revision != 0 && snapshot.Revision <= l.revision {
		applied := l.revision
		l.mu.Unlock()
		l.logger.Warn("Theme service: dropping stale snapshot",
			"revision", snapshot.Revision,
			"applied_revision", applied)
		return
	}
	l.themes = themes
	l.loaded = true
	l.revision = snapshot.Revision
	event := l.currentLocked()
	l.mu.Unlock()

	l.logger.Debug("Theme service: snapshot applied",
		"revision", snapshot.Revision,
		"count", len(themes))

	l.broadcast(event)
}

func (l *ThemeList) currentLocked() ThemeEvent {
	themes := make([]model.Theme, len(l.themes))
	copy(themes, l.themes)
	return ThemeEvent{Themes: themes, Loaded: l.loaded, Revision: l.revision}
}

// Current returns the applied cache state.
func (l *ThemeList) Current() ThemeEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLocked()
}

// Filter returns the cached themes matching query.
func (l *ThemeList) Filter(query string) FilterResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return buildFilterResult(l.themes, l.loaded, query)
}

// Listen registers a listener. The channel has room for one event and
// always holds the latest state: a slow reader skips intermediate states.
// The current state is delivered right away when the cache is loaded.
// The returned function unregisters the listener and closes the channel.
func (l *ThemeList) Listen() (<-chan ThemeEvent, func()) {
	ch := make(chan ThemeEvent, 1)

	// Registration and the initial offer share one critical section, so a
	// broadcast racing with Listen is either seen by the Current read or
	// delivered after the offer. apply never holds mu while broadcasting.
	l.listenersMu.Lock()
	if l.closed {
		l.listenersMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := l.nextID
	l.nextID++
	l.listeners[id] = ch
	if l.beforeOffer != nil {
		l.beforeOffer()
	}
	if current := l.Current(); current.Loaded {
		offerLatest(ch, current)
	}
	l.listenersMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.listenersMu.Lock()
			defer l.listenersMu.Unlock()
			if _, ok := l.listeners[id]; ok {
				delete(l.listeners, id)
				close(ch)
			}
		})
	}
}

// notify delivers a notice along with the unchanged cache state.
func (l *ThemeList) notify(notice model.Notice) {
	event := l.Current()
	event.Notice = &notice
	l.broadcast(event)
}

func (l *ThemeList) broadcast(event ThemeEvent) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()
	for _, ch := range l.listeners {
		offerLatest(ch, event)
	}
}

// offerLatest replaces whatever is buffered in ch with event.
func offerLatest(ch chan ThemeEvent, event ThemeEvent) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- event:
	default:
	}
}

// Delete removes themes/{key} and, once that succeeded, issues a
// fire-and-forget delete of tests/{key}. A failure of the dependent delete
// is only logged.
func (l *ThemeList) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return reject(ReasonEmptyKey)
	}

	if err := l.store.Delete(ctx, model.JoinPath(model.CollectionThemes, key)); err != nil {
		l.logger.Error("Theme service: failed to delete theme",
			"key", key,
			"error", err.Error())
		return writeFailed(MsgThemeDeleteFailed, err)
	}

	l.cascades.Add(1)
	go func() {
		defer l.cascades.Done()
		if err := l.store.Delete(context.WithoutCancel(ctx), model.JoinPath(model.CollectionTests, key)); err != nil {
			l.logger.Debug("Theme service: dependent tests delete failed",
				"key", key,
				"error", err.Error())
		}
	}()

	l.logger.Info("Theme service: theme deleted", "key", key)
	return nil
}

// Create writes a new theme under a generated key.
func (l *ThemeList) Create(ctx context.Context, in model.ThemeInput) (model.Theme, error) {
	in = normalizeThemeInput(in)
	if in.Title == "" {
		return model.Theme{}, reject(ReasonEmptyTitle)
	}

	key, err := l.newKey()
	if err != nil {
		return model.Theme{}, fmt.Errorf("failed to generate theme key: %w", err)
	}

	return l.write(ctx, key, in)
}

// Update overwrites an existing themes/{key} with the input. A missing
// theme is reported as model.ErrNotFound and is not recreated.
func (l *ThemeList) Update(ctx context.Context, key string, in model.ThemeInput) (model.Theme, error) {
	if strings.TrimSpace(key) == "" {
		return model.Theme{}, reject(ReasonEmptyKey)
	}
	in = normalizeThemeInput(in)
	if in.Title == "" {
		return model.Theme{}, reject(ReasonEmptyTitle)
	}

	// A deleted theme is not recreated without its tests.
	if _, err := l.store.Get(ctx, model.JoinPath(model.CollectionThemes, key)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Theme{}, notFound(MsgThemeNotFound, err)
		}
		l.logger.Error("Theme service: failed to read theme before update",
			"key", key,
			"error", err.Error())
		return model.Theme{}, readFailed(MsgThemeSaveFailed, err)
	}

	return l.write(ctx, key, in)
}

func (l *ThemeList) write(ctx context.Context, key string, in model.ThemeInput) (model.Theme, error) {
	fields := in.Fields()
	if err := l.store.Write(ctx, model.JoinPath(model.CollectionThemes, key), fields); err != nil {
		l.logger.Error("Theme service: failed to write theme",
			"key", key,
			"error", err.Error())
		return model.Theme{}, writeFailed(MsgThemeSaveFailed, err)
	}

	l.logger.Info("Theme service: theme saved", "key", key)
	return model.ThemeFromDocument(model.Document{Key: key, Fields: fields}), nil
}

func normalizeThemeInput(in model.ThemeInput) model.ThemeInput {
	return model.ThemeInput{
		Title:    strings.TrimSpace(in.Title),
		Theory:   in.Theory,
		Examples: in.Examples,
	}
}

// Close releases the subscription and closes every listener channel.
// Snapshots arriving afterwards are not applied.
func (l *ThemeList) Close() {
	l.lifecycleMu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel = nil
	l.stopped = true
	l.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	l.listenersMu.Lock()
	l.closed = true
	for id, ch := range l.listeners {
		delete(l.listeners, id)
		close(ch)
	}
	l.listenersMu.Unlock()

	l.cascades.Wait()
}
