package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
)

type userValidator struct {
	mode MatchMode
	dir  directory.Directory
}

func (v *userValidator) Validate(ctx context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error {
	appendCommonIssues(action, pt, res)

	if action.UsersGroups == nil {
		return nil
	}

	var users, groups []models.UserGroupEntry

	for _, entry := range action.UsersGroups.Entries {
		if entry.IsGroup {
			groups = append(groups, entry)
		} else {
			users = append(users, entry)
		}
	}

	if err := v.validateUsers(ctx, users, res); err != nil {
		return err
	}

	return v.validateGroups(ctx, groups, res)
}

func (v *userValidator) validateUsers(ctx context.Context, entries []models.UserGroupEntry, res *Result) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[int]directory.User)
	byName := make(map[string]directory.User)

	if v.mode == MatchByID {
		ids := make([]int, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}

		resolved, err := v.dir.UsersByID(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolving users by id: %w", err)
		}

		for _, u := range resolved {
			byID[u.ID] = u
		}
	} else {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}

		resolved, err := v.dir.UsersByName(ctx, names)
		if err != nil {
			return fmt.Errorf("resolving users by name: %w", err)
		}

		for _, u := range resolved {
			byName[u.Name] = u
		}
	}

	// Uniqueness is computed on resolved user identity, independently
	// of the group set.
	seen := make(map[int]bool, len(entries))

	for _, e := range entries {
		var (
			user directory.User
			ok   bool
		)

		if v.mode == MatchByID {
			user, ok = byID[e.ID]
			if !ok {
				res.Append(UserNotFoundById, strconv.Itoa(e.ID))

				continue
			}
		} else {
			user, ok = byName[e.Name]
			if !ok {
				res.Append(UserNotFoundByName, e.Name)

				continue
			}
		}

		if seen[user.ID] {
			res.Append(DuplicateUserOrGroupFound, user.Name)

			continue
		}

		seen[user.ID] = true
	}

	return nil
}

func (v *userValidator) validateGroups(ctx context.Context, entries []models.UserGroupEntry, res *Result) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[int]directory.Group)

	var byName []directory.Group

	if v.mode == MatchByID {
		ids := make([]int, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}

		resolved, err := v.dir.GroupsByID(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolving groups by id: %w", err)
		}

		for _, g := range resolved {
			byID[g.ID] = g
		}
	} else {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}

		resolved, err := v.dir.GroupsByName(ctx, names)
		if err != nil {
			return fmt.Errorf("resolving groups by name: %w", err)
		}

		byName = resolved
	}

	seen := make(map[int]bool, len(entries))

	for _, e := range entries {
		var (
			group directory.Group
			ok    bool
		)

		if v.mode == MatchByID {
			group, ok = byID[e.ID]
			if !ok {
				res.Append(GroupNotFoundById, strconv.Itoa(e.ID))

				continue
			}
		} else {
			group, ok = matchGroupByName(byName, e)
			if !ok {
				res.Append(GroupNotFoundByName, e.Name)

				continue
			}
		}

		if seen[group.ID] {
			res.Append(DuplicateUserOrGroupFound, group.Name)

			continue
		}

		seen[group.ID] = true
	}

	return nil
}

// matchGroupByName picks the candidate whose project scope matches the
// entry's: scoped entries only match groups in the same project,
// unscoped entries only match site-level groups.
func matchGroupByName(candidates []directory.Group, entry models.UserGroupEntry) (directory.Group, bool) {
	for _, g := range candidates {
		if g.Name != entry.Name {
			continue
		}

		if entry.GroupProjectID == nil {
			if g.ProjectID == nil {
				return g, true
			}

			continue
		}

		if g.ProjectID != nil && *g.ProjectID == *entry.GroupProjectID {
			return g, true
		}
	}

	return directory.Group{}, false
}
