package service

import (
	"strings"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
)

// NormalizePhoneNumber only trims surrounding whitespace. Format checks are
// left to the gateway; locally the value must contain at least one digit.
func NormalizePhoneNumber(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", &domain.ValidationError{Field: "phoneNumber", Reason: "is required"}
	}

	if !validator.HasDigit(phone) {
		return "", &domain.ValidationError{Field: "phoneNumber", Reason: "must contain at least one digit"}
	}

	return phone, nil
}
