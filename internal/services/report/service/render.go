package service

import (
	"fmt"
	"strings"
	"time"

	"callcrm/internal/services/report/domain"
)

var months = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// turkishDate formats an Istanbul day as "10 Haziran 2025"
func turkishDate(day time.Time) string {
	return fmt.Sprintf("%d %s %d", day.Day(), months[day.Month()-1], day.Year())
}

func subject(day time.Time) string { return "Arama Raporu - " + turkishDate(day) }

func render(day time.Time, sections []domain.Section) string {
	var b strings.Builder
	b.WriteString(subject(day))
	b.WriteString("\n\n")
	if len(sections) == 0 {
		b.WriteString("Aktif kullanıcı yok.\n")
		return b.String()
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s bugün %d arama yaptı.\n", s.UserName, len(s.Calls))
		if len(s.Calls) == 0 {
			b.WriteString("Bugün hiç arama yapılmadı.\n")
			continue
		}
		b.WriteString("Aranan firmalar ve sonuçlar:\n")
		for j, c := range s.Calls {
			name := c.CompanyName
			if name == "" {
				name = "Bilinmeyen Firma"
			}
			outcome := c.Outcome
			if outcome == "" {
				outcome = "Sonuç girilmedi"
			}
			fmt.Fprintf(&b, "%d. %s - %s\n", j+1, name, outcome)
		}
	}
	return b.String()
}
