package domain

// Role enumerates the dashboard personas.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleStudent
}

// User is an account that can sign in to the service.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	Department        string
	Points            int
	Resolved          int
	ResolvedWithinSLA int
	RatingSum         int
	RatingCount       int
	Badges            []string
}

// AverageRating is the mean feedback rating, zero when unrated.
func (u *User) AverageRating() float64 {
	if u == nil || u.RatingCount == 0 {
		return 0
	}
	return float64(u.RatingSum) / float64(u.RatingCount)
}

// HasBadge reports whether the user already holds badge.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// IsOperator reports whether the user works complaints rather than raising them.
func (u *User) IsOperator() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleStaff)
}
