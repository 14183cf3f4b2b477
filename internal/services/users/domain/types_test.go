package domain

import (
	"testing"
	"time"

	"callcrm/internal/core/calday"
)

func TestCallsOn(t *testing.T) {
	day := calday.Date(2025, time.June, 10)
	u := User{TodaysCalls: 4, LastCallAt: day.Add(9 * time.Hour)}
	if got := u.CallsOn(day.Add(18 * time.Hour)); got != 4 {
		t.Fatalf("same day = %d", got)
	}
	if got := u.CallsOn(day.Add(30 * time.Hour)); got != 0 {
		t.Fatalf("next day = %d", got)
	}
	if got := (User{TodaysCalls: 2}).CallsOn(day); got != 0 {
		t.Fatalf("never called = %d", got)
	}
}

func TestTargetOrAndAdmin(t *testing.T) {
	n := 0
	if (User{Target: &n}).TargetOr(20) != 0 {
		t.Fatalf("explicit zero target must win")
	}
	if (User{}).TargetOr(20) != 20 {
		t.Fatalf("nil target must fall back")
	}
	if !(User{Level: LevelAdmin}).IsAdmin() || (User{Level: "user"}).IsAdmin() {
		t.Fatalf("IsAdmin mismatch")
	}
}
