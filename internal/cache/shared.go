package cache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/quillhq/quill/internal/kv"
)

// Shared is the optional cross-process cache layer on top of a kv.Store.
// It is best-effort: backend failures are logged and treated as misses, so
// a broken Redis never fails a query.
type Shared struct {
	store  kv.Store
	prefix string
	logger *zap.Logger
}

// NewShared creates a shared cache layer. logger may be nil.
func NewShared(store kv.Store, prefix string, logger *zap.Logger) *Shared {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shared{store: store, prefix: prefix, logger: logger}
}

// Get fetches the raw serialized object for an ID.
func (s *Shared) Get(ctx context.Context, id string) ([]byte, bool) {
	data, err := s.store.Get(ctx, s.prefix+id)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.logger.Warn("Failed to read shared cache", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Set stores the raw serialized object for an ID.
func (s *Shared) Set(ctx context.Context, id string, data []byte) {
	if err := s.store.Set(ctx, s.prefix+id, data); err != nil {
		s.logger.Warn("Failed to write shared cache", zap.String("id", id), zap.Error(err))
	}
}

// Invalidate removes the object for an ID.
func (s *Shared) Invalidate(ctx context.Context, id string) {
	if err := s.store.Del(ctx, s.prefix+id); err != nil {
		s.logger.Warn("Failed to invalidate shared cache", zap.String("id", id), zap.Error(err))
	}
}
