// Package domain holds the call record types and the outcome enum
package domain

import (
	"strings"

	perr "callcrm/internal/platform/errors"

	"golang.org/x/text/unicode/norm"
)

// Outcome is the resolved result of a call
type Outcome string

// Known outcomes, stored verbatim
const (
	OutcomeSecretary  Outcome = "Sekreter"
	OutcomePurchasing Outcome = "Satınalma"
	OutcomeLabChief   Outcome = "Lab Şefi"
	OutcomeNoNeed     Outcome = "İhtiyaç Yok"
	OutcomePotential  Outcome = "Potansiyel"
)

// Outcomes lists every accepted outcome
var Outcomes = []Outcome{OutcomeSecretary, OutcomePurchasing, OutcomeLabChief, OutcomeNoNeed, OutcomePotential}

// NoNeedSpectro is written to the company's spectro field on a no-need call
const NoNeedSpectro = "İhtiyaç Yok"

// ParseOutcome accepts the outcome in any Unicode normal form. Empty input is
// a call without outcome and returns "".
func ParseOutcome(s string) (Outcome, error) {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return "", nil
	}
	for _, o := range Outcomes {
		if string(o) == s {
			return o, nil
		}
	}
	return "", perr.WithField(perr.Validationf("unknown outcome %q", s), "outcome")
}
