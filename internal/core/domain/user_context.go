package domain

// Viewer describes the person an ad is served to. Country is an ISO
// 3166-1 alpha-2 code; Age is nil when unknown. The HTTP layer builds it
// from request data and passes it into the usecase.
type Viewer struct {
	ID      string
	Country string
	Age     *int
}

// Role is the authorization role of an authenticated principal.
type Role string

const (
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// SystemActor is recorded as the actor of transitions nobody requested,
// such as lazy expiry.
const SystemActor = "system"

// Principal is the authenticated caller of a mutating operation. The
// engine trusts it and only enforces role and ownership guards.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owns reports whether p is the seller who owns c.
func (p Principal) Owns(c *Campaign) bool {
	return p.Role == RoleSeller && p.ID != "" && p.ID == c.SellerID
}
