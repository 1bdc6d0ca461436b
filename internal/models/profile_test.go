package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAllergies(t *testing.T) {
	assert.Equal(t, []string{"egg", "milk", "peanut"}, NormalizeAllergies([]string{" Milk", "egg", "", "peanut", "EGG"}))
	assert.Equal(t, []string{}, NormalizeAllergies(nil))
}

func TestNewUserProfile(t *testing.T) {
	p := NewUserProfile("u1")
	assert.Equal(t, "u1", p.UserID)
	assert.NotNil(t, p.Allergies)
	assert.Empty(t, p.DietLabel())

	vegan := "vegan"
	p.Diet = &vegan
	assert.Equal(t, "vegan", p.DietLabel())

	var nilProfile *UserProfile
	assert.Empty(t, nilProfile.DietLabel())
}
