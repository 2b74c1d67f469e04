package directory

import (
	"context"
	"sync"
)

// InMemoryDirectory is a Directory backed by in-process maps. It serves
// the file-based deployment and the test suites.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	projects map[int]Project
	groups   map[int]Group
	users    map[int]User
}

// NewInMemoryDirectory creates an empty in-memory directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		projects: make(map[int]Project),
		groups:   make(map[int]Group),
		users:    make(map[int]User),
	}
}

// AddProject registers a project record.
func (d *InMemoryDirectory) AddProject(p Project) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.projects[p.ID] = p
}

// AddGroup registers a group record.
func (d *InMemoryDirectory) AddGroup(g Group) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.groups[g.ID] = g
}

// AddUser registers a user record.
func (d *InMemoryDirectory) AddUser(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[u.ID] = u
}

func (d *InMemoryDirectory) ProjectsByPath(_ context.Context, paths []string) ([]Project, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var resolved []Project

	for _, path := range paths {
		for _, p := range d.projects {
			if p.Path == path {
				resolved = append(resolved, p)

				break
			}
		}
	}

	return resolved, nil
}

func (d *InMemoryDirectory) ProjectsExist(_ context.Context, ids []int) (map[int]bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	exists := make(map[int]bool, len(ids))
	for _, id := range ids {
		_, ok := d.projects[id]
		exists[id] = ok
	}

	return exists, nil
}

func (d *InMemoryDirectory) GroupsByName(_ context.Context, names []string) ([]Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var resolved []Group

	for _, name := range names {
		for _, g := range d.groups {
			if g.Name == name {
				resolved = append(resolved, g)
			}
		}
	}

	return resolved, nil
}

func (d *InMemoryDirectory) GroupsByID(_ context.Context, ids []int) ([]Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var resolved []Group

	for _, id := range ids {
		if g, ok := d.groups[id]; ok {
			resolved = append(resolved, g)
		}
	}

	return resolved, nil
}

func (d *InMemoryDirectory) UsersByID(_ context.Context, ids []int) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var resolved []User

	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			resolved = append(resolved, u)
		}
	}

	return resolved, nil
}

func (d *InMemoryDirectory) UsersByName(_ context.Context, names []string) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var resolved []User

	for _, name := range names {
		for _, u := range d.users {
			if u.Name == name {
				resolved = append(resolved, u)

				break
			}
		}
	}

	return resolved, nil
}
