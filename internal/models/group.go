package models

// Member is one participant of a group. Email and Name are denormalized
// from the user record at group-creation time so group listings do not
// need a join.
type Member struct {
	UserID string
	Email  string
	Name   string
}

// Group represents a set of users who split bills together.
// Membership is fixed at creation time.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Goa Trip", "Flat 4B").
	Name string

	// Members is the ordered member list. Order is preserved because the
	// settlement planner's tie-breaking depends on input order.
	Members []Member

	// CreatedBy is the user ID of the member who created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberByEmail returns the member with the given (lowercase) email,
// or nil if absent.
func (g *Group) MemberByEmail(email string) *Member {
	for i := range g.Members {
		if g.Members[i].Email == email {
			return &g.Members[i]
		}
	}
	return nil
}
