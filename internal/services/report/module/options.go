package module

import (
	"callcrm/internal/platform/config"
)

// Options for the report module
type Options struct {
	Hour, Minute int
	Recipients   []string
	From         string
	APIKey       string
	Enabled      bool
	AllowTest    bool
}

// FromConfig fills options from environment
// CORE_REPORT_AT (default 19:00) is the Istanbul send time
// CORE_REPORT_RECIPIENTS is a comma separated address list
// CORE_REPORT_FROM (default "CallCRM <rapor@callcrm.local>") is the sender
// CORE_REPORT_ENABLED (default true) starts the worker in the api process
// RESEND_API_KEY enables delivery; without it reports are only logged
// CORE_API_ENV=production hides the test trigger
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_REPORT_")
	h, m := n.MayClock("AT", 19, 0)
	env := cfg.Prefix("CORE_API_").MayEnum("ENV", "development", "development", "staging", "production")
	return Options{
		Hour:       h,
		Minute:     m,
		Recipients: n.MayCSV("RECIPIENTS", nil),
		From:       n.MayString("FROM", "CallCRM <rapor@callcrm.local>"),
		APIKey:     cfg.Prefix("RESEND_").MayString("API_KEY", ""),
		Enabled:    n.MayBool("ENABLED", true),
		AllowTest:  env != "production",
	}
}
