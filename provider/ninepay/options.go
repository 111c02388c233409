package ninepay

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mstgnz/ninepay/infra/config"
	"github.com/mstgnz/ninepay/infra/validate"
	"github.com/mstgnz/ninepay/provider"
)

// Options configures the 9Pay gateway integration
type Options struct {
	// APIURL is the gateway base URL, sandbox by default
	APIURL string `validate:"required,url"`

	MerchantKey string `validate:"required"`
	SecretKey   string `validate:"required"`
	ChecksumKey string `validate:"required"`

	// ReturnURL is the path (or absolute URL) the gateway redirects the browser to
	ReturnURL string `validate:"required,callbackpath"`

	// IPNURL is the path the gateway posts server-to-server notifications to
	IPNURL string `validate:"required,callbackpath"`

	// LenientChecksum accepts callbacks whose checksum does not match, logging a warning
	LenientChecksum bool

	// PendingStatuses lists gateway status codes reported as ResultPending
	PendingStatuses []string

	// Timeout bounds each inquiry request
	Timeout time.Duration `validate:"gte=0"`
}

// DefaultOptions returns options with every non-secret field set to its default
func DefaultOptions() Options {
	return Options{
		APIURL:    defaultAPIURL,
		ReturnURL: defaultReturnURL,
		IPNURL:    defaultIPNURL,
		Timeout:   defaultTimeout,
	}
}

// withDefaults fills zero valued fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.APIURL == "" {
		o.APIURL = d.APIURL
	}
	if o.ReturnURL == "" {
		o.ReturnURL = d.ReturnURL
	}
	if o.IPNURL == "" {
		o.IPNURL = d.IPNURL
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	o.APIURL = strings.TrimRight(o.APIURL, "/")
	return o
}

// Validate reports missing credentials or malformed values
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("ninepay: %w: %w", provider.ErrConfiguration, err)
	}
	return nil
}

// OptionsFromAppConfig builds options from the NINEPAY_* environment settings
func OptionsFromAppConfig(cfg *config.AppConfig) Options {
	return Options{
		APIURL:          cfg.NinePayAPIURL,
		MerchantKey:     cfg.NinePayMerchantKey,
		SecretKey:       cfg.NinePaySecretKey,
		ChecksumKey:     cfg.NinePayChecksumKey,
		ReturnURL:       cfg.NinePayReturnPath,
		IPNURL:          cfg.NinePayIPNPath,
		LenientChecksum: cfg.NinePayLenientChecksum,
		PendingStatuses: cfg.NinePayPendingStatuses,
		Timeout:         cfg.NinePayTimeout,
	}.withDefaults()
}

// MarshalJSON hides credentials when options are logged or served
func (o Options) MarshalJSON() ([]byte, error) {
	type safe struct {
		APIURL          string   `json:"apiUrl"`
		MerchantKey     string   `json:"merchantKey"`
		ReturnURL       string   `json:"returnUrl"`
		IPNURL          string   `json:"ipnUrl"`
		LenientChecksum bool     `json:"lenientChecksum"`
		PendingStatuses []string `json:"pendingStatuses"`
		Timeout         string   `json:"timeout"`
	}
	return json.Marshal(safe{
		APIURL:          o.APIURL,
		MerchantKey:     o.MerchantKey,
		ReturnURL:       o.ReturnURL,
		IPNURL:          o.IPNURL,
		LenientChecksum: o.LenientChecksum,
		PendingStatuses: o.PendingStatuses,
		Timeout:         o.Timeout.String(),
	})
}
