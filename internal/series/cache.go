package series

import (
	"context"
	"os"
)

// CacheKey identifies a decoded series by its event log, as last seen on
// disk, and its tag. A log that grows or is rewritten gets a new key.
type CacheKey struct {
	Path    string
	Size    int64
	ModTime int64 // unix nanoseconds
	Tag     string
}

// Cache stores decoded series between invocations.
type Cache interface {
	GetSeries(ctx context.Context, key CacheKey) (*Series, bool, error)
	PutSeries(ctx context.Context, key CacheKey, s *Series) error
}

func cacheKey(path, tag string) (CacheKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Tag:     tag,
	}, nil
}
