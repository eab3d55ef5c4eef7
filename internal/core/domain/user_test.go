package domain

import "testing"

func TestRole_Valid(t *testing.T) {
	cases := map[Role]bool{
		RoleAdmin:   true,
		RoleUser:    true,
		"":          false,
		"ADMIN":     false,
		"superuser": false,
	}
	for role, want := range cases {
		if got := role.Valid(); got != want {
			t.Fatalf("Role(%q).Valid() = %v, want %v", role, got, want)
		}
	}
}
