package httpkit

import (
	"net/http"

	"callcrm/internal/platform/net/http/bind"
)

// Validate runs struct validation and returns a field-scoped error
func Validate(v any) error { return bind.Struct(v) }

// QueryInt reads an integer query parameter or def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) { return bind.QueryInt(r, name, def) }

// Query reads a trimmed query parameter or def when absent
func Query(r *http.Request, name, def string) string { return bind.QueryString(r, name, def) }
