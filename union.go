package avro

// UnionValue is the host representation for a union schema whose branches
// cannot be captured by Go's nil-pointer-means-null convention (i.e. any
// union with more than two branches, or two non-null branches). BranchKey
// is the branch's distinguishing key (its full name for a named schema,
// otherwise its primitive type name, per spec.md §3.2); Value is the
// branch's decoded value.
//
// A two-branch [null, T] union instead maps directly to *T: nil is the
// null branch, non-nil is T (spec.md §4.6's common case).
type UnionValue struct {
	BranchKey string
	Value     interface{}
}
