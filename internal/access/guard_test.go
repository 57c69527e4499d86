package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DipuTony/trulyhelp-portal/internal/session"
)

func activeSession(role session.Role) session.Session {
	return session.Session{
		Identity: session.Identity{UserID: "u1", Role: role},
		Status:   session.StatusActive,
	}
}

func TestDecideInactiveSessionGoesToLogin(t *testing.T) {
	for _, status := range []session.Status{session.StatusAnonymous, session.StatusExpired} {
		s := session.Session{Status: status}
		d := Decide(session.RoleAdmin, s)
		assert.False(t, d.Allowed)
		assert.Equal(t, PathLogin, d.Target)
	}
}

func TestDecideRoleMatrix(t *testing.T) {
	roles := []session.Role{session.RoleAdmin, session.RoleVolunteer, session.RoleDonor}
	for _, required := range roles {
		for _, actual := range roles {
			d := Decide(required, activeSession(actual))
			if required == actual {
				assert.True(t, d.Allowed, "role %s should reach its own views", actual)
				assert.Empty(t, d.Target)
			} else {
				assert.False(t, d.Allowed, "role %s must not reach %s views", actual, required)
				assert.Equal(t, HomeOf(actual), d.Target)
			}
		}
	}
}

func TestDecideDonorHittingAdminViewGoesToDonorHome(t *testing.T) {
	d := Decide(session.RoleAdmin, activeSession(session.RoleDonor))
	assert.False(t, d.Allowed)
	assert.Equal(t, PathDonorHome, d.Target)
}

func TestDecideAnyRoleAcceptsAnyActiveSession(t *testing.T) {
	for _, role := range []session.Role{session.RoleAdmin, session.RoleVolunteer, session.RoleDonor, session.RoleGuest} {
		d := Decide(AnyRole, activeSession(role))
		assert.True(t, d.Allowed)
	}
}

func TestDecideAnySharedView(t *testing.T) {
	shared := []session.Role{session.RoleAdmin, session.RoleVolunteer}

	assert.True(t, DecideAny(shared, activeSession(session.RoleAdmin)).Allowed)
	assert.True(t, DecideAny(shared, activeSession(session.RoleVolunteer)).Allowed)

	d := DecideAny(shared, activeSession(session.RoleDonor))
	assert.False(t, d.Allowed)
	assert.Equal(t, PathDonorHome, d.Target)

	d = DecideAny(shared, session.Session{Status: session.StatusExpired})
	assert.False(t, d.Allowed)
	assert.Equal(t, PathLogin, d.Target)
}

func TestHomeOfIsTotal(t *testing.T) {
	assert.Equal(t, PathAdminHome, HomeOf(session.RoleAdmin))
	assert.Equal(t, PathVolunteerHome, HomeOf(session.RoleVolunteer))
	assert.Equal(t, PathDonorHome, HomeOf(session.RoleDonor))
	assert.Equal(t, PathPublicHome, HomeOf(session.RoleGuest))
	assert.Equal(t, PathPublicHome, HomeOf(session.Role("SOMETHING_NEW")))
}
