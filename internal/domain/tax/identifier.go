package tax

import (
	"fmt"
	"strings"

	"github.com/bizsuite/backend/internal/domain/shared"
)

// Jurisdiction is an ISO 3166-1 alpha-2 country code identifying a tax
// jurisdiction.
type Jurisdiction string

const (
	// JurisdictionUK is the United Kingdom (VAT registration prefix "GB")
	JurisdictionUK Jurisdiction = "GB"
)

// IdentifierKind describes the recognized form of a validated identifier
type IdentifierKind string

const (
	// KindUKVat9 is the standard 9-digit UK VAT registration number
	KindUKVat9 IdentifierKind = "uk_vat_9"

	// KindUKVat12 is the 12-digit UK VAT registration number used by
	// branch traders (9-digit body plus 3-digit branch suffix)
	KindUKVat12 IdentifierKind = "uk_vat_12"
)

// Validation errors
var (
	ErrInvalidFormat   = shared.NewValidationError("TAX_ID_INVALID_FORMAT", "Tax identifier has an invalid format")
	ErrInvalidChecksum = shared.NewValidationError("TAX_ID_INVALID_CHECKSUM", "Tax identifier failed checksum validation")
)

// ukChecksumWeights are applied to the first seven digits of a UK VAT
// registration number. The weighted sum mod 97 determines the two check
// digits under both the standard (97) and the 9755 scheme.
var ukChecksumWeights = [7]int{8, 7, 6, 5, 4, 3, 2}

// TaxIdentifier is a validated, normalized tax registration number.
// It is immutable once validated; re-validation creates a new value.
type TaxIdentifier struct {
	jurisdiction Jurisdiction
	digits       string
	kind         IdentifierKind
}

// ValidateIdentifier normalizes and validates a raw tax identifier against
// the rules of the given jurisdiction. The raw value may contain whitespace
// and lowercase letters; the canonical form is uppercase with whitespace
// stripped.
func ValidateIdentifier(raw string, jurisdiction Jurisdiction) (*TaxIdentifier, error) {
	normalized := normalizeIdentifier(raw)
	if normalized == "" {
		return nil, ErrInvalidFormat
	}

	switch jurisdiction {
	case JurisdictionUK:
		return validateUK(normalized)
	default:
		return nil, shared.NewConfigurationGap("TAX_ID_UNSUPPORTED_JURISDICTION",
			"No tax identifier rules configured for jurisdiction %q", string(jurisdiction))
	}
}

func normalizeIdentifier(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || r == '\t' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func validateUK(normalized string) (*TaxIdentifier, error) {
	if !strings.HasPrefix(normalized, string(JurisdictionUK)) {
		return nil, ErrInvalidFormat
	}

	digits := normalized[len(JurisdictionUK):]
	if !isAllDigits(digits) {
		return nil, ErrInvalidFormat
	}

	var kind IdentifierKind
	switch len(digits) {
	case 9:
		kind = KindUKVat9
	case 12:
		kind = KindUKVat12
	default:
		return nil, ErrInvalidFormat
	}

	// The 12-digit branch form carries the same checksummed 9-digit body.
	if !ukChecksumValid(digits[:9]) {
		return nil, ErrInvalidChecksum
	}

	return &TaxIdentifier{
		jurisdiction: JurisdictionUK,
		digits:       digits,
		kind:         kind,
	}, nil
}

// ukChecksumValid verifies the two check digits of a 9-digit body.
// The weighted sum of the first seven digits is reduced mod 97; the check
// digits must equal 97-remainder (standard scheme) or 97-remainder+55
// (the 9755 scheme introduced for numbers issued from late 2002), with the
// latter wrapped to two digits.
func ukChecksumValid(body string) bool {
	sum := 0
	for i, w := range ukChecksumWeights {
		sum += int(body[i]-'0') * w
	}

	check := int(body[7]-'0')*10 + int(body[8]-'0')
	remainder := sum % 97

	standard := 97 - remainder
	modern := standard + 55
	if modern >= 100 {
		modern -= 100
	}

	return check == standard || check == modern
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Jurisdiction returns the jurisdiction the identifier was validated against
func (t *TaxIdentifier) Jurisdiction() Jurisdiction {
	return t.jurisdiction
}

// Kind returns the recognized identifier form
func (t *TaxIdentifier) Kind() IdentifierKind {
	return t.kind
}

// Normalized returns the canonical stored form: jurisdiction prefix plus
// digits, uppercase, no separators.
func (t *TaxIdentifier) Normalized() string {
	return string(t.jurisdiction) + t.digits
}

// Formatted returns the grouped display form ("GB 123 4567 89"). This is
// purely presentational; Normalized is the stored canonical value.
func (t *TaxIdentifier) Formatted() string {
	switch t.kind {
	case KindUKVat12:
		return fmt.Sprintf("%s %s %s %s %s",
			t.jurisdiction, t.digits[0:3], t.digits[3:7], t.digits[7:9], t.digits[9:12])
	default:
		return fmt.Sprintf("%s %s %s %s",
			t.jurisdiction, t.digits[0:3], t.digits[3:7], t.digits[7:9])
	}
}
