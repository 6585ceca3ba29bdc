package engine

import "testing"

func TestExpandTemplate(t *testing.T) {
	cases := []struct {
		template, value, want string
	}{
		{"/divisions?parent={value}", "42", "/divisions?parent=42"},
		{"/divisions?parent={value}", "", "/divisions?parent="},
		{"/divisions?parent={value}", "a b&c", "/divisions?parent=a+b%26c"},
		{"/divisions/{value}", "a b", "/divisions/a%20b"},
		{"/divisions/{value}/hijos?desde={value}", "x y", "/divisions/x%20y/hijos?desde=x+y"},
		{"/divisions", "42", "/divisions"},
	}
	for _, tc := range cases {
		if got := expandTemplate(tc.template, tc.value); got != tc.want {
			t.Fatalf("expandTemplate(%q, %q) = %q, want %q", tc.template, tc.value, got, tc.want)
		}
	}
}
