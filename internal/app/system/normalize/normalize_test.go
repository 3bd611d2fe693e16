package normalize

import (
	"reflect"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"John Doe", "John Doe"},
		{"  John Doe  ", "John Doe"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
		{"lowercase name", "lowercase name"},
		{"Grace \t  Hopper", "Grace Hopper"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"admin", "admin"},
		{"ADMIN", "admin"},
		{"  Admin  ", "admin"},
		{"MEMBER", "member"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryParam(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"search term", "search term"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE", "UPPERCASE"}, // Preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := QueryParam(tt.input)
			if got != tt.want {
				t.Errorf("QueryParam(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jane Doe", "janedoe"},
		{"  O'Brien-Smith 2 ", "obriensmith2"},
		{"José", "jos"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Username(tt.input)
			if got != tt.want {
				t.Errorf("Username(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEmailList(t *testing.T) {
	got := EmailList(" A@x.com, b@x.com,,a@x.com ,  ")
	want := []string{"a@x.com", "b@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EmailList() = %v, want %v", got, want)
	}
	if got := EmailList(""); len(got) != 0 {
		t.Errorf("EmailList(\"\") = %v, want empty", got)
	}
}

func TestCategories(t *testing.T) {
	got := Categories([]string{" Prayer ", "prayer", "Prayer", "", "Gratitude"})
	want := []string{"Prayer", "prayer", "Gratitude"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}
