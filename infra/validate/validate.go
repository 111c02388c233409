package validate

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/ninepay/infra/config"
)

var once sync.Once

// CustomValidate registers the project specific rules on the shared validator
func CustomValidate() {
	once.Do(func() {
		v := config.App().Validator
		_ = v.RegisterValidation("callbackpath", callbackPath)
	})
}

// Struct validates s with the shared validator, registering custom rules first
func Struct(s any) error {
	CustomValidate()
	return config.App().Validator.Struct(s)
}

// callbackPath accepts an absolute path or an absolute http(s) URL
func callbackPath(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.ContainsAny(value, " \t\r\n") {
		return false
	}
	if strings.HasPrefix(value, "/") {
		return !strings.HasPrefix(value, "//")
	}

	u, err := url.Parse(value)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
