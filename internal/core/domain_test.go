package core

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-05-01" {
		t.Fatalf("expected 2024-05-01, got %s", d)
	}
	if !MustDate("2024-01-01").Before(d) {
		t.Fatalf("expected 2024-01-01 before 2024-05-01")
	}
	if _, err := ParseDate("01/05/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestParentFullName(t *testing.T) {
	cases := []struct {
		p    Parent
		want string
	}{
		{Parent{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{Parent{FirstName: "Jane"}, "Jane"},
		{Parent{LastName: "Doe"}, "Doe"},
		{Parent{}, ""},
	}
	for _, tc := range cases {
		if got := tc.p.FullName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
