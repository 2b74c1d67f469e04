// Package directory abstracts the live system's project, group and user
// registries behind batched lookup methods. The engine only reads from
// it; resolution results feed the data validator and the user-property
// validator.
package directory

import "context"

// Project is a resolved project record.
type Project struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

// Group is a resolved permission group. ProjectID is set for groups
// scoped to a single project.
type Group struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ProjectID *int   `json:"project_id,omitempty"`
}

// User is a resolved user record.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Directory is the batched lookup service the validators depend on.
// Implementations must treat every method as read-only.
type Directory interface {
	// ProjectsByPath resolves project paths to records. Unknown paths
	// are simply absent from the result.
	ProjectsByPath(ctx context.Context, paths []string) ([]Project, error)

	// ProjectsExist reports which of the given project ids exist.
	ProjectsExist(ctx context.Context, ids []int) (map[int]bool, error)

	// GroupsByName resolves group names to records. A name shared by
	// groups in different project scopes yields every match.
	GroupsByName(ctx context.Context, names []string) ([]Group, error)

	// GroupsByID resolves group ids to records.
	GroupsByID(ctx context.Context, ids []int) ([]Group, error)

	// UsersByID resolves user ids to records.
	UsersByID(ctx context.Context, ids []int) ([]User, error)

	// UsersByName resolves user display names to records.
	UsersByName(ctx context.Context, names []string) ([]User, error)
}
