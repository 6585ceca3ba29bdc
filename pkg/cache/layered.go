package cache

import (
	"context"
	"errors"
)

// Layered serves reads from a fast front store and falls back to a
// persistent back store, refilling the front on a back hit. Writes go to
// both.
type Layered struct {
	front Store
	back  Store
}

var _ Store = (*Layered)(nil)

func NewLayered(front, back Store) *Layered {
	return &Layered{front: front, back: back}
}

func (l *Layered) Get(ctx context.Context, key string) (Entry, bool, error) {
	if entry, ok, err := l.front.Get(ctx, key); err == nil && ok {
		return entry, true, nil
	}
	entry, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	_ = l.front.Set(ctx, key, entry)
	return entry, true, nil
}

func (l *Layered) Set(ctx context.Context, key string, entry Entry) error {
	if err := l.back.Set(ctx, key, entry); err != nil {
		return err
	}
	return l.front.Set(ctx, key, entry)
}

func (l *Layered) Remove(ctx context.Context, keys ...string) error {
	return errors.Join(l.front.Remove(ctx, keys...), l.back.Remove(ctx, keys...))
}

func (l *Layered) Clear(ctx context.Context) error {
	return errors.Join(l.front.Clear(ctx), l.back.Clear(ctx))
}
