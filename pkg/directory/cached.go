package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// CachedDirectory decorates a Directory with a redis read-through
// cache. Directory data changes rarely relative to how often imports
// and transitions resolve it, so a short TTL keeps remote registries
// off the hot path without a separate invalidation channel.
type CachedDirectory struct {
	inner  Directory
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewCachedDirectory wraps inner with a redis cache. A zero ttl selects
// the default of five minutes.
func NewCachedDirectory(inner Directory, client *redis.Client, logger *slog.Logger, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &CachedDirectory{
		inner:  inner,
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func (d *CachedDirectory) ProjectsByPath(ctx context.Context, paths []string) ([]Project, error) {
	var (
		resolved []Project
		misses   []string
	)

	for _, path := range paths {
		var p Project
		if d.cacheGet(ctx, "project:path:"+path, &p) {
			resolved = append(resolved, p)
		} else {
			misses = append(misses, path)
		}
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fetched, err := d.inner.ProjectsByPath(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, p := range fetched {
		d.cacheSet(ctx, "project:path:"+p.Path, p)
	}

	return append(resolved, fetched...), nil
}

func (d *CachedDirectory) ProjectsExist(ctx context.Context, ids []int) (map[int]bool, error) {
	// Existence checks are not cached: a stale positive would let an
	// import reference a deleted project.
	return d.inner.ProjectsExist(ctx, ids)
}

func (d *CachedDirectory) GroupsByName(ctx context.Context, names []string) ([]Group, error) {
	var (
		resolved []Group
		misses   []string
	)

	for _, name := range names {
		var matches []Group
		if d.cacheGet(ctx, "group:name:"+name, &matches) {
			resolved = append(resolved, matches...)
		} else {
			misses = append(misses, name)
		}
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fetched, err := d.inner.GroupsByName(ctx, misses)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]Group)
	for _, g := range fetched {
		byName[g.Name] = append(byName[g.Name], g)
	}

	for name, matches := range byName {
		d.cacheSet(ctx, "group:name:"+name, matches)
	}

	return append(resolved, fetched...), nil
}

func (d *CachedDirectory) GroupsByID(ctx context.Context, ids []int) ([]Group, error) {
	var (
		resolved []Group
		misses   []int
	)

	for _, id := range ids {
		var g Group
		if d.cacheGet(ctx, fmt.Sprintf("group:id:%d", id), &g) {
			resolved = append(resolved, g)
		} else {
			misses = append(misses, id)
		}
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fetched, err := d.inner.GroupsByID(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, g := range fetched {
		d.cacheSet(ctx, fmt.Sprintf("group:id:%d", g.ID), g)
	}

	return append(resolved, fetched...), nil
}

func (d *CachedDirectory) UsersByID(ctx context.Context, ids []int) ([]User, error) {
	var (
		resolved []User
		misses   []int
	)

	for _, id := range ids {
		var u User
		if d.cacheGet(ctx, fmt.Sprintf("user:id:%d", id), &u) {
			resolved = append(resolved, u)
		} else {
			misses = append(misses, id)
		}
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fetched, err := d.inner.UsersByID(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, u := range fetched {
		d.cacheSet(ctx, fmt.Sprintf("user:id:%d", u.ID), u)
	}

	return append(resolved, fetched...), nil
}

func (d *CachedDirectory) UsersByName(ctx context.Context, names []string) ([]User, error) {
	var (
		resolved []User
		misses   []string
	)

	for _, name := range names {
		var u User
		if d.cacheGet(ctx, "user:name:"+name, &u) {
			resolved = append(resolved, u)
		} else {
			misses = append(misses, name)
		}
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fetched, err := d.inner.UsersByName(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, u := range fetched {
		d.cacheSet(ctx, "user:name:"+u.Name, u)
	}

	return append(resolved, fetched...), nil
}

func (d *CachedDirectory) cacheGet(ctx context.Context, key string, out any) bool {
	payload, err := d.client.Get(ctx, "stateforge:directory:"+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			d.logger.WarnContext(ctx, "Directory cache read failed", "key", key, "error", err)
		}

		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		d.logger.WarnContext(ctx, "Directory cache entry corrupt", "key", key, "error", err)

		return false
	}

	return true
}

func (d *CachedDirectory) cacheSet(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := d.client.Set(ctx, "stateforge:directory:"+key, payload, d.ttl).Err(); err != nil {
		d.logger.WarnContext(ctx, "Directory cache write failed", "key", key, "error", err)
	}
}
