package session

import (
	"context"
	"testing"
)

func TestWithFrom(t *testing.T) {
	ctx := With(context.Background(), Session{UserID: "u1", Email: "a@example.com"})
	s, ok := From(ctx)
	if !ok {
		t.Fatal("expected session in context")
	}
	if s.UserID != "u1" || s.Email != "a@example.com" {
		t.Errorf("got %+v", s)
	}

	if _, ok := From(context.Background()); ok {
		t.Error("empty context should not carry a session")
	}
	if _, ok := From(With(context.Background(), Session{})); ok {
		t.Error("session without user id should not be valid")
	}
}

func TestValidUserID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"Xy12abcDEF", true},
		{"", false},
		{"a.b", false},
		{"$where", false},
		{"with space", false},
	}
	for _, tt := range tests {
		if got := ValidUserID(tt.id); got != tt.want {
			t.Errorf("ValidUserID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
