// Package redisstore persists the dashboard layout in Redis and relays layout
// changes made by other processes over pub/sub.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/redis/go-redis/v9"
)

// Defaults.
const (
	DefaultKey     = "budgly:dashboard_layout"
	DefaultChannel = "budgly:dashboard-layout-changed"
	DefaultTimeout = 5 * time.Second
)

// Options configures a LayoutStore.
type Options struct {
	// URL is either a redis:// URL or a bare host:port.
	URL     string
	Key     string
	Channel string
	Timeout time.Duration
}

// Connect opens a client for opts.URL and pings it, retrying briefly.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	opt, err := parseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	err = common.WithRetry(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, common.DefaultRetryOptions())
	if err != nil {
		_ = client.Close()
		return nil, common.NewUserError("Could not connect to Redis at "+opt.Addr, err)
	}
	return client, nil
}

func parseURL(raw string) (*redis.Options, error) {
	if raw == "" {
		raw = "localhost:6379"
	}
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		// Fall back to treating the value as a plain address.
		addr := strings.TrimPrefix(raw, "redis://")
		if addr == "" {
			return nil, fmt.Errorf("%w: redis url %q", common.ErrInvalidConfig, raw)
		}
		return &redis.Options{Addr: addr}, nil
	}
	return opt, nil
}

// LayoutStore keeps the layout as a JSON string under one key. Every Save publishes
// on the change channel so other processes can refresh.
type LayoutStore struct {
	client  redis.UniversalClient
	key     string
	channel string
	mu      sync.Mutex
	closed  bool
	cancels []context.CancelFunc
}

// New wraps an existing client.
func New(client redis.UniversalClient, opts Options) *LayoutStore {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &LayoutStore{client: client, key: key, channel: channel}
}

// Load returns the stored entries, or nil when the key is absent.
func (s *LayoutStore) Load(ctx context.Context) ([]model.LayoutEntry, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	var entries []model.LayoutEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	return entries, nil
}

// Save writes entries with a single SET and announces the change.
func (s *LayoutStore) Save(ctx context.Context, entries []model.LayoutEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key, raw, 0)
	pipe.Publish(ctx, s.channel, s.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// Watch subscribes to the change channel and calls fn for every message until
// cancel is called or the store is closed.
func (s *LayoutStore) Watch(fn func()) (cancel func()) {
	ctx, stop := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stop()
		return func() {}
	}
	s.cancels = append(s.cancels, stop)
	s.mu.Unlock()

	sub := s.client.Subscribe(ctx, s.channel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				slog.Debug("Layout change received", "channel", msg.Channel)
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(stop) }
}

// Close stops every watcher. The client is owned by the caller.
func (s *LayoutStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, c := range s.cancels {
		c()
	}
	s.cancels = nil
}
