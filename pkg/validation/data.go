package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
)

// ResolvedReferences is the subset of a definition's external
// references confirmed to exist. It is populated even when issues are
// recorded so callers can proceed with, or report on, the partial set.
// Read-only after the validation pass; safe to share without locking.
type ResolvedReferences struct {
	ValidProjectIDs map[int]struct{}
	ValidGroups     []directory.Group
}

// DataValidator cross-references a definition's project and permission
// group references against the live system through batched directory
// lookups.
type DataValidator struct {
	dir directory.Directory
}

// NewDataValidator creates a data validator on top of dir.
func NewDataValidator(dir directory.Directory) *DataValidator {
	if dir == nil {
		panic("validation: nil directory")
	}

	return &DataValidator{dir: dir}
}

// ValidateData runs the project and group passes. Both passes always
// run and both result sets are always populated, even when issues are
// present. The error return is reserved for lookup infrastructure
// failures.
func (v *DataValidator) ValidateData(ctx context.Context, def *models.WorkflowDefinition) (*ResolvedReferences, *Result, error) {
	res := NewResult()
	refs := &ResolvedReferences{ValidProjectIDs: make(map[int]struct{})}

	if err := v.validateProjects(ctx, def, refs, res); err != nil {
		return nil, nil, err
	}

	if err := v.validateGroups(ctx, def, refs, res); err != nil {
		return nil, nil, err
	}

	return refs, res, nil
}

func (v *DataValidator) validateProjects(ctx context.Context, def *models.WorkflowDefinition, refs *ResolvedReferences, res *Result) error {
	var (
		explicitIDs []int
		paths       []string
	)

	for _, ref := range def.Projects {
		if ref.ID > 0 {
			explicitIDs = append(explicitIDs, ref.ID)
		} else if strings.TrimSpace(ref.Path) != "" {
			paths = append(paths, ref.Path)
		}
	}

	referenced := len(explicitIDs) + len(paths)
	if referenced == 0 {
		return nil
	}

	// Resolution is tracked per reference, not by comparing set sizes:
	// two references may legitimately resolve to the same project.
	unresolved := 0

	if len(explicitIDs) > 0 {
		exists, err := v.dir.ProjectsExist(ctx, explicitIDs)
		if err != nil {
			return fmt.Errorf("checking project ids: %w", err)
		}

		for _, id := range explicitIDs {
			if exists[id] {
				refs.ValidProjectIDs[id] = struct{}{}
			} else {
				unresolved++
			}
		}
	}

	if len(paths) > 0 {
		resolved, err := v.dir.ProjectsByPath(ctx, paths)
		if err != nil {
			return fmt.Errorf("resolving project paths: %w", err)
		}

		byPath := make(map[string]int, len(resolved))
		for _, p := range resolved {
			byPath[p.Path] = p.ID
		}

		for _, path := range paths {
			id, ok := byPath[path]
			if !ok {
				unresolved++

				continue
			}

			refs.ValidProjectIDs[id] = struct{}{}
		}
	}

	if unresolved > 0 {
		res.Append(ProjectNotFound, fmt.Sprintf("%d of %d project references resolved", referenced-unresolved, referenced))
	}

	return nil
}

func (v *DataValidator) validateGroups(ctx context.Context, def *models.WorkflowDefinition, refs *ResolvedReferences, res *Result) error {
	names := make(map[string]bool)

	for _, tr := range def.Transitions {
		for _, pg := range tr.PermissionGroups {
			if strings.TrimSpace(pg.Name) != "" {
				names[pg.Name] = true
			}
		}
	}

	if len(names) == 0 {
		return nil
	}

	lookup := make([]string, 0, len(names))
	for name := range names {
		lookup = append(lookup, name)
	}

	resolved, err := v.dir.GroupsByName(ctx, lookup)
	if err != nil {
		return fmt.Errorf("resolving permission groups: %w", err)
	}

	found := make(map[string]bool, len(resolved))
	for _, g := range resolved {
		found[g.Name] = true
	}

	refs.ValidGroups = resolved

	for _, name := range lookup {
		if !found[name] {
			res.Append(GroupsNotFound, name)
		}
	}

	return nil
}
