package repositories

import "context"

// ConflictKind says why a guarded update touched no rows.
type ConflictKind int

const (
	ConflictRowChanged ConflictKind = iota
	ConflictRowMissing
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictRowMissing:
		return "row_missing"
	default:
		return "row_changed"
	}
}

// ClassifyConflict runs the existence check a zero-row update needs before
// "row missing" can be told apart from "row changed".
func ClassifyConflict(ctx context.Context, exists func(context.Context) (bool, error)) (ConflictKind, error) {
	ok, err := exists(ctx)
	if err != nil {
		return ConflictRowChanged, err
	}
	if !ok {
		return ConflictRowMissing, nil
	}
	return ConflictRowChanged, nil
}
