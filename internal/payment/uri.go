package payment

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bft-labs/walletshell/internal/domain"
)

// Scheme is the URI scheme handled by the payment server.
const Scheme = "walletshell"

// ShowCommand asks a running instance to bring its window forward.
const ShowCommand = Scheme + ":show"

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,8})?$`)

// IsPaymentURI reports whether s uses the payment scheme.
func IsPaymentURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), Scheme+":")
}

// ParseURI parses "walletshell:<address>?amount=..&label=..&message=..".
// Unknown parameters prefixed with "req-" make the URI invalid.
func ParseURI(raw string) (domain.PaymentRequest, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.PaymentRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidPaymentURI, err)
	}
	if !strings.EqualFold(u.Scheme, Scheme) {
		return domain.PaymentRequest{}, fmt.Errorf("%w: scheme %q", domain.ErrInvalidPaymentURI, u.Scheme)
	}

	address := u.Opaque
	if address == "" {
		// walletshell://address form
		address = u.Host
	}
	if address == "" {
		return domain.PaymentRequest{}, fmt.Errorf("%w: missing address", domain.ErrInvalidPaymentURI)
	}

	req := domain.PaymentRequest{Address: address, Source: raw}
	for key, values := range u.Query() {
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		switch key {
		case "amount":
			if !amountPattern.MatchString(value) {
				return domain.PaymentRequest{}, fmt.Errorf("%w: amount %q", domain.ErrInvalidPaymentURI, value)
			}
			req.Amount = value
		case "label":
			req.Label = value
		case "message":
			req.Message = value
		default:
			if strings.HasPrefix(key, "req-") {
				return domain.PaymentRequest{}, fmt.Errorf("%w: required parameter %q", domain.ErrInvalidPaymentURI, key)
			}
		}
	}
	return req, nil
}
