// Package config reads typed settings from prefixed environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"callcrm/internal/platform/logger"
)

// Conf is a namespaced view over environment variables.
// New() is the root; modules scope themselves with Prefix("CORE_CALLSYNC_").
type Conf struct{ prefix string }

// New creates a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child Conf with p appended to the prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// must fetches a required value and panics through the logger when it is absent
func (c Conf) must(k string) string {
	v := c.lookup(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

// may parses an optional value, warning and returning def when parse fails
func may[T any](c Conf, k string, def T, parse func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Interface("default", def).Msg("invalid value; using default")
		return def
	}
	return v
}

// MustString returns the value or panics when it is missing
func (c Conf) MustString(k string) string { return c.must(k) }

// MustInt returns the value as int or panics
func (c Conf) MustInt(k string) int {
	s := c.must(k)
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(k)).Str("value", s).Msg("invalid int value")
	}
	return v
}

// MustPort returns a listen address like ":4000" after checking 1..65535
func (c Conf) MustPort(k string) string {
	s := c.must(k)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		logger.Get().Panic().Str("key", c.key(k)).Str("value", s).Msg("invalid TCP port; expected 1..65535")
	}
	return ":" + s
}

// MayString returns the value or def
func (c Conf) MayString(k, def string) string {
	if v := c.lookup(k); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def; invalid input logs and falls back
func (c Conf) MayInt(k string, def int) int { return may(c, k, def, strconv.Atoi) }

// MayBool returns the value or def; invalid input logs and falls back
func (c Conf) MayBool(k string, def bool) bool { return may(c, k, def, strconv.ParseBool) }

// MayDuration returns the value or def; accepts time.ParseDuration syntax
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return may(c, k, def, time.ParseDuration)
}

// MayClock parses a wall-clock "HH:MM" into hour and minute. Used for
// schedules pinned to local business hours (for example the 19:00 report).
func (c Conf) MayClock(k string, defHour, defMin int) (int, int) {
	type hm struct{ h, m int }
	v := may(c, k, hm{defHour, defMin}, func(s string) (hm, error) {
		var h, m int
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return hm{}, err
		}
		if h < 0 || h > 23 || m < 0 || m > 59 {
			return hm{}, fmt.Errorf("clock %q out of range", s)
		}
		return hm{h, m}, nil
	})
	return v.h, v.m
}

// MayCSV splits a comma-separated list, dropping blanks; def when empty
func (c Conf) MayCSV(k string, def []string) []string {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	out := make([]string, 0, strings.Count(s, ",")+1)
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value if it is one of allowed (case-insensitive), def when unset,
// and panics on anything else
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := c.MayString(k, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
