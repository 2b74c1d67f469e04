package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stateforge/stateforge/pkg/directory"
)

// NewDirectory wires the entity directory used by data validation and
// user property resolution. When redisURL is set the directory is
// wrapped with a read-through Redis cache.
func NewDirectory(inner directory.Directory, logger *slog.Logger, redisURL string, ttl time.Duration) directory.Directory {
	if redisURL == "" {
		return inner
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to parse Redis URL: %w", err))
	}

	return directory.NewCachedDirectory(inner, redis.NewClient(opts), logger, ttl)
}

type directorySnapshot struct {
	Projects []directory.Project `json:"projects"`
	Groups   []directory.Group   `json:"groups"`
	Users    []directory.User    `json:"users"`
}

// NewDirectorySnapshot loads an in-memory directory from a JSON
// snapshot file. An empty path yields an empty directory.
func NewDirectorySnapshot(path string) (*directory.InMemoryDirectory, error) {
	dir := directory.NewInMemoryDirectory()
	if path == "" {
		return dir, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory snapshot: %w", err)
	}

	var snapshot directorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse directory snapshot: %w", err)
	}

	for _, p := range snapshot.Projects {
		dir.AddProject(p)
	}

	for _, g := range snapshot.Groups {
		dir.AddGroup(g)
	}

	for _, u := range snapshot.Users {
		dir.AddUser(u)
	}

	return dir, nil
}
