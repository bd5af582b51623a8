package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("kim@example.com"))
	assert.True(t, ValidateEmail("kim.lee+tally@sub.example.co"))
	assert.False(t, ValidateEmail("kim@example"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail(""))
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("kim"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("this-username-is-way-too-long-to-accept"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Str0ng!pass"))
	assert.False(t, ValidatePassword("Sh0rt!a"))
	assert.False(t, ValidatePassword("alllowercase1!"))
	assert.False(t, ValidatePassword("NoDigitsHere!"))
	assert.False(t, ValidatePassword("NoSpecials123"))
}

func TestValidateLabel(t *testing.T) {
	assert.True(t, ValidateLabel("Coffee"))
	assert.False(t, ValidateLabel("   "))
	assert.False(t, ValidateLabel(""))
}
