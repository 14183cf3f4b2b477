package config

import (
	"testing"
	"time"

	kit "callcrm/internal/platform/testkit"
)

func TestPrefixNesting(t *testing.T) {
	c := New().Prefix("CORE_").Prefix("CALLSYNC_")
	if got := c.key("INTERVAL"); got != "CORE_CALLSYNC_INTERVAL" {
		t.Fatalf("key = %q", got)
	}
}

func TestMust(t *testing.T) {
	c := New().Prefix("SERVICE_PGSQL_")
	t.Setenv("SERVICE_PGSQL_DBURL", " postgres://x ")
	if got := c.MustString("DBURL"); got != "postgres://x" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("NOPE") })

	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	if got := c.MustInt("MAX_CONNS"); got != 9 {
		t.Fatalf("MustInt = %d", got)
	}
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "nine")
	kit.MustPanic(t, func() { _ = c.MustInt("MAX_CONNS") })
}

func TestMustPort(t *testing.T) {
	c := New().Prefix("CORE_API_")
	t.Setenv("CORE_API_API_PORT", "4000")
	if got := c.MustPort("API_PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
	for _, bad := range []string{"0", "70000", "http"} {
		t.Setenv("CORE_API_API_PORT", bad)
		kit.MustPanic(t, func() { _ = c.MustPort("API_PORT") })
	}
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("CORE_LIFECYCLE_")
	if got := c.MayInt("DEFAULT_TARGET", 20); got != 20 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("CORE_LIFECYCLE_DEFAULT_TARGET", "abc")
	if got := c.MayInt("DEFAULT_TARGET", 20); got != 20 {
		t.Fatalf("MayInt invalid should fall back, got %d", got)
	}
	t.Setenv("CORE_LIFECYCLE_ENABLED", "false")
	if c.MayBool("ENABLED", true) {
		t.Fatalf("MayBool should read false")
	}
	t.Setenv("CORE_LIFECYCLE_EVERY", "90s")
	if got := c.MayDuration("EVERY", time.Minute); got != 90*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayString("MISSING", "d"); got != "d" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayClock(t *testing.T) {
	c := New().Prefix("CORE_REPORT_")
	h, m := c.MayClock("AT", 19, 0)
	if h != 19 || m != 0 {
		t.Fatalf("default clock = %d:%d", h, m)
	}
	t.Setenv("CORE_REPORT_AT", "08:45")
	if h, m = c.MayClock("AT", 19, 0); h != 8 || m != 45 {
		t.Fatalf("clock = %d:%d", h, m)
	}
	t.Setenv("CORE_REPORT_AT", "25:00")
	if h, m = c.MayClock("AT", 19, 0); h != 19 || m != 0 {
		t.Fatalf("out of range should fall back, got %d:%d", h, m)
	}
}

func TestMayCSVAndEnum(t *testing.T) {
	c := New().Prefix("CORE_REPORT_")
	t.Setenv("CORE_REPORT_RECIPIENTS", " a@x.com, ,b@x.com ")
	got := c.MayCSV("RECIPIENTS", nil)
	if len(got) != 2 || got[0] != "a@x.com" || got[1] != "b@x.com" {
		t.Fatalf("MayCSV = %#v", got)
	}
	t.Setenv("CORE_REPORT_RECIPIENTS", " , ")
	if got := c.MayCSV("RECIPIENTS", []string{"def"}); len(got) != 1 || got[0] != "def" {
		t.Fatalf("MayCSV blank = %#v", got)
	}

	t.Setenv("CORE_REPORT_ENV", "Production")
	if got := c.MayEnum("ENV", "development", "development", "production"); got != "production" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("CORE_REPORT_ENV", "staging")
	kit.MustPanic(t, func() { _ = c.MayEnum("ENV", "development", "development", "production") })
}
