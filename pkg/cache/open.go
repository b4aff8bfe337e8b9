package cache

import "context"

// Open returns a Redis cache when url is set, a file cache when dir is set,
// and a null cache otherwise.
func Open(ctx context.Context, url, dir string) (Cache, error) {
	switch {
	case url != "":
		return NewRedisCache(ctx, url)
	case dir != "":
		return NewFileCache(dir)
	}
	return NewNullCache(), nil
}
