package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		c    Case
		name string
		want bool
	}{
		{Snake, "user_accounts", true},
		{Snake, "UserAccounts", false},
		{Camel, "userAccounts", true},
		{Camel, "user_accounts", false},
		{Pascal, "UserAccounts", true},
		{Pascal, "userAccounts", false},
		{Kebab, "user-accounts", true},
		{Kebab, "user_accounts", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.c, tt.name), "%s against %s", tt.name, tt.c)
	}
}

func TestConvertRoundTrips(t *testing.T) {
	tests := []struct {
		from Case
		name string
		to   Case
		want string
	}{
		{Snake, "user_accounts", Camel, "userAccounts"},
		{Snake, "user_accounts", Pascal, "UserAccounts"},
		{Snake, "user_accounts", Kebab, "user-accounts"},
		{Camel, "userAccounts", Snake, "user_accounts"},
		{Pascal, "UserAccounts", Snake, "user_accounts"},
		{Kebab, "user-accounts", Snake, "user_accounts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Convert(tt.to, tt.name))
		assert.True(t, Matches(tt.to, Convert(tt.to, tt.name)))
	}
}

func TestMatchesUnknownCaseAlwaysTrue(t *testing.T) {
	assert.True(t, Matches(Case("bogus"), "anything_at_ALL"))
}

func TestWordsSingleWord(t *testing.T) {
	assert.Equal(t, []string{"id"}, Words("id"))
	assert.Equal(t, []string{"id"}, Words("Id"))
}
