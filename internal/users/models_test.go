package users

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("USER"))
	assert.True(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestBeforeCreateAssignsID(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)

	fixed := uuid.New()
	u = &User{ID: fixed}
	assert.NoError(t, u.BeforeCreate(nil))
	assert.Equal(t, fixed, u.ID)
}
