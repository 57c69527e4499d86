// Package access is the single place role gating happens. Every protected
// view funnels through Decide; no other component implements its own role
// check, so the redirect policy lives here and nowhere else.
package access

import "github.com/DipuTony/trulyhelp-portal/internal/session"

// Route paths the guard can redirect to.
const (
	PathLogin         = "/login"
	PathPublicHome    = "/"
	PathAdminHome     = "/admin/dashboard"
	PathVolunteerHome = "/volunteer/dashboard"
	PathDonorHome     = "/donor/dashboard"
)

// AnyRole marks a view that only requires an authenticated session.
const AnyRole session.Role = ""

// Decision is either Allow or a redirect target, never both.
type Decision struct {
	Allowed bool
	Target  string
}

var allow = Decision{Allowed: true}

func redirectTo(path string) Decision { return Decision{Target: path} }

// HomeOf maps every role to its own landing route. Total: an unknown or
// guest role lands on the public home.
func HomeOf(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return PathAdminHome
	case session.RoleVolunteer:
		return PathVolunteerHome
	case session.RoleDonor:
		return PathDonorHome
	default:
		return PathPublicHome
	}
}

// Decide gates a view that requires the given role. An inactive session goes
// to login. A live session of the wrong role is bounced to its own home
// rather than a generic forbidden page, so the user keeps a working task
// flow. Pure: same inputs, same decision.
func Decide(required session.Role, s session.Session) Decision {
	if !s.Active() {
		return redirectTo(PathLogin)
	}
	if required != AnyRole && s.Identity.Role != required {
		return redirectTo(HomeOf(s.Identity.Role))
	}
	return allow
}

// DecideAny gates a view shared by several roles. Same redirect policy as
// Decide; a session matching none of the roles goes to its own home.
func DecideAny(required []session.Role, s session.Session) Decision {
	if !s.Active() {
		return redirectTo(PathLogin)
	}
	for _, role := range required {
		if role == AnyRole || s.Identity.Role == role {
			return allow
		}
	}
	return redirectTo(HomeOf(s.Identity.Role))
}
