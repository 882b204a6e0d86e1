package services

import (
	"context"
	"testing"

	"ff-tournament-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		role string
		ok   bool
	}{
		{"referee", models.RoleReferee, true},
		{" TECHNICAL ", models.RoleTechnical, true},
		{"Organizer", models.RoleOrganizer, true},
		{"volunteer", models.RoleVolunteer, true},
		{"caster", "Caster", false},
		{"", "", false},
	}
	for _, tt := range tests {
		role, ok := NormalizeRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.role, role, tt.in)
	}
}

func TestConductorCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.conductors.Create(ctx, ConductorInput{Name: " Meera ", Phone: "+91 98765 43210", RollNo: "CS-21", Role: "referee"})
	require.NoError(t, err)
	assert.Equal(t, "Meera", c.Name)
	assert.Equal(t, "+919876543210", c.Phone)
	assert.Equal(t, models.RoleReferee, c.Role)

	_, err = env.conductors.Create(ctx, ConductorInput{Name: "Kiran", Phone: "12", Role: "Volunteer"})
	assert.True(t, IsValidation(err))
	_, err = env.conductors.Create(ctx, ConductorInput{Name: "Kiran", Phone: "9876543210", Role: "caster"})
	assert.True(t, IsValidation(err))

	_, err = env.conductors.Create(ctx, ConductorInput{Name: "Kiran", Phone: "9876543210", Role: "volunteer"})
	require.NoError(t, err)

	referees, err := env.conductors.List(ctx, "REFEREE")
	require.NoError(t, err)
	require.Len(t, referees, 1)
	assert.Equal(t, c.ID, referees[0].ID)

	all, err := env.conductors.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := env.conductors.Update(ctx, c.ID, ConductorInput{Name: "Meera S", Phone: "9876543210", Role: "organizer"})
	require.NoError(t, err)
	assert.Equal(t, "Meera S", updated.Name)
	assert.Equal(t, models.RoleOrganizer, updated.Role)
	assert.Empty(t, updated.RollNo)

	_, err = env.conductors.Update(ctx, "missing", ConductorInput{Name: "X", Phone: "9876543210", Role: "organizer"})
	assert.True(t, IsNotFound(err))

	require.NoError(t, env.conductors.Delete(ctx, c.ID))
	assert.True(t, IsNotFound(env.conductors.Delete(ctx, c.ID)))
	_, err = env.conductors.Get(ctx, c.ID)
	assert.True(t, IsNotFound(err))
}
