package devcamper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, UserRole, role)

	for _, name := range []string{"user", "publisher", "admin"} {
		role, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, Role(name), role)
	}

	_, err = ParseRole("Admin")
	assert.Error(t, err)
	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestRoleIn(t *testing.T) {
	assert.True(t, PublisherRole.In(PublisherRole, AdminRole))
	assert.False(t, UserRole.In(PublisherRole, AdminRole))
	assert.False(t, AdminRole.In())
	assert.False(t, AdminRole.In(RegisterableRoles...))
}

func TestCareerValidate(t *testing.T) {
	for _, c := range ValidCareers {
		assert.NoError(t, c.Validate(), c)
	}
	assert.Error(t, Career("Underwater Basket Weaving").Validate())
	assert.Error(t, Career("web development").Validate())
}

func TestSkillValidate(t *testing.T) {
	for _, s := range []Skill{SkillBeginner, SkillIntermediate, SkillAdvanced} {
		assert.NoError(t, s.Validate(), s)
	}
	assert.Error(t, Skill("").Validate())
	assert.Error(t, Skill("expert").Validate())
}
