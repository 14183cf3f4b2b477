package domain

import (
	"callcrm/internal/platform/net/http/bind"
)

func init() {
	if err := bind.RegisterValidation("outcome", func(fl bind.FieldLevel) bool {
		_, err := ParseOutcome(fl.Field().String())
		return err == nil
	}, "{0} must be one of Sekreter, Satınalma, Lab Şefi, İhtiyaç Yok, Potansiyel"); err != nil {
		panic(err)
	}
}
