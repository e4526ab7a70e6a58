package summary

import "github.com/yukikurage/consultant-ledger/internal/models"

// PersistedIDMinLength separates store-assigned identifiers (36 character
// UUIDs) from the short temporary identifiers given to rows that were added
// locally and never saved.
const PersistedIDMinLength = 20

// IsPersistedIdentifier reports whether id looks like an identifier assigned
// by the store.
//
// The check is a shape heuristic: a long id that was generated locally would
// be misclassified as persisted.
func IsPersistedIdentifier(id string) bool {
	return len(id) > PersistedIDMinLength
}

type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is a single store operation. For deletes Subtask is the current row.
type Change struct {
	Kind    ChangeKind
	Subtask models.Subtask
}

// Plan lists the store operations that turn the current subtasks of a task
// into the desired list. Changes holds the same operations as the three
// grouped slices, in apply order: deletes first, then creates and updates in
// desired order.
type Plan struct {
	ToCreate []models.Subtask
	ToUpdate []models.Subtask
	ToDelete []string
	Changes  []Change
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Reconcile diffs the full desired subtask list of a task against the
// persisted one.
//
// A desired row is an update when its id is persisted-shaped and present in
// current; every other desired row is a create, re-parented to taskID with
// its temporary id cleared. Current rows whose id is missing from desired are
// deletes. Creates and updates keep the desired order.
func Reconcile(taskID string, current, desired []models.Subtask) Plan {
	currentIDs := make(map[string]struct{}, len(current))
	for _, s := range current {
		if s.ParentID != taskID {
			continue
		}
		currentIDs[s.ID] = struct{}{}
	}

	desiredIDs := make(map[string]struct{}, len(desired))
	for _, s := range desired {
		desiredIDs[s.ID] = struct{}{}
	}

	plan := Plan{
		ToCreate: []models.Subtask{},
		ToUpdate: []models.Subtask{},
		ToDelete: []string{},
		Changes:  make([]Change, 0, len(desired)),
	}

	for _, s := range current {
		if s.ParentID != taskID {
			continue
		}
		if _, ok := desiredIDs[s.ID]; !ok {
			plan.ToDelete = append(plan.ToDelete, s.ID)
			plan.Changes = append(plan.Changes, Change{Kind: ChangeDelete, Subtask: s})
		}
	}

	for _, s := range desired {
		s.ParentID = taskID

		if _, ok := currentIDs[s.ID]; ok && IsPersistedIdentifier(s.ID) {
			plan.ToUpdate = append(plan.ToUpdate, s)
			plan.Changes = append(plan.Changes, Change{Kind: ChangeUpdate, Subtask: s})
			continue
		}

		s.ID = ""
		plan.ToCreate = append(plan.ToCreate, s)
		plan.Changes = append(plan.Changes, Change{Kind: ChangeCreate, Subtask: s})
	}

	return plan
}
