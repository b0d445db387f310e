package domain

// User is a display snapshot keyed by "name". It is never stored on its
// own, only embedded inside cards and broadcast transiently. Arbitrary
// display fields ride along untouched.
type User map[string]any

// Name returns the join key used for bulk card reassignment.
func (u User) Name() string {
	name, _ := u["name"].(string)
	return name
}
