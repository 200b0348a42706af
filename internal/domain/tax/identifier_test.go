package tax

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Digits 1234567 have weighted sum 112, remainder 15, so the valid check
// digits are 82 (standard scheme) or 37 (9755 scheme).
const (
	validStandard = "GB123456782"
	validModern   = "GB123456737"
)

func TestValidateIdentifier_UK(t *testing.T) {
	t.Run("accepts valid 9-digit number under standard scheme", func(t *testing.T) {
		id, err := ValidateIdentifier(validStandard, JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, KindUKVat9, id.Kind())
		assert.Equal(t, "GB123456782", id.Normalized())
		assert.Equal(t, JurisdictionUK, id.Jurisdiction())
	})

	t.Run("accepts valid 9-digit number under 9755 scheme", func(t *testing.T) {
		id, err := ValidateIdentifier(validModern, JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, KindUKVat9, id.Kind())
	})

	t.Run("rejects checksum mismatch", func(t *testing.T) {
		// Check digits 89 do not match either 82 or 37.
		_, err := ValidateIdentifier("GB123456789", JurisdictionUK)

		assert.ErrorIs(t, err, ErrInvalidChecksum)
	})

	t.Run("normalizes whitespace and case before validation", func(t *testing.T) {
		id, err := ValidateIdentifier("  gb 123 4567 82 ", JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, "GB123456782", id.Normalized())
	})

	t.Run("accepts 12-digit branch number with valid body", func(t *testing.T) {
		id, err := ValidateIdentifier("GB123456782001", JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, KindUKVat12, id.Kind())
		assert.Equal(t, "GB123456782001", id.Normalized())
	})

	t.Run("rejects 12-digit branch number with invalid body", func(t *testing.T) {
		_, err := ValidateIdentifier("GB123456789001", JurisdictionUK)

		assert.ErrorIs(t, err, ErrInvalidChecksum)
	})

	t.Run("rejects wrong prefix", func(t *testing.T) {
		_, err := ValidateIdentifier("FR123456782", JurisdictionUK)

		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		for _, raw := range []string{"GB12345678", "GB1234567820", "GB", ""} {
			_, err := ValidateIdentifier(raw, JurisdictionUK)
			assert.ErrorIs(t, err, ErrInvalidFormat, "raw %q", raw)
		}
	})

	t.Run("rejects non-digit characters", func(t *testing.T) {
		_, err := ValidateIdentifier("GB12345678X", JurisdictionUK)

		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("reports unsupported jurisdiction as configuration gap", func(t *testing.T) {
		_, err := ValidateIdentifier("DE123456789", Jurisdiction("DE"))

		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidFormat))
	})
}

// Changing any single weighted digit shifts the mod-97 remainder, so the
// original check digits can never remain valid.
func TestValidateIdentifier_SingleDigitFlipInvalidates(t *testing.T) {
	body := []byte("123456782")
	for pos := 0; pos < 7; pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == body[pos] {
				continue
			}
			flipped := make([]byte, len(body))
			copy(flipped, body)
			flipped[pos] = d

			raw := "GB" + string(flipped)
			_, err := ValidateIdentifier(raw, JurisdictionUK)
			assert.ErrorIs(t, err, ErrInvalidChecksum, "position %d digit %c", pos, d)
		}
	}
}

func TestTaxIdentifier_Formatted(t *testing.T) {
	t.Run("groups 9-digit number for display", func(t *testing.T) {
		id, err := ValidateIdentifier(validStandard, JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, "GB 123 4567 82", id.Formatted())
	})

	t.Run("groups 12-digit number for display", func(t *testing.T) {
		id, err := ValidateIdentifier("GB123456782001", JurisdictionUK)

		require.NoError(t, err)
		assert.Equal(t, "GB 123 4567 82 001", id.Formatted())
	})

	t.Run("formatting never changes the canonical value", func(t *testing.T) {
		id, err := ValidateIdentifier("gb 123 4567 82", JurisdictionUK)

		require.NoError(t, err)
		_ = id.Formatted()
		assert.Equal(t, "GB123456782", id.Normalized())
	})
}

func TestUKChecksum_ConstructedBodiesAreValid(t *testing.T) {
	// Build bodies from the weighted-sum formula and check both schemes.
	prefixes := []string{"1234567", "0000010", "9876543", "5550001"}
	for _, prefix := range prefixes {
		sum := 0
		for i, w := range ukChecksumWeights {
			sum += int(prefix[i]-'0') * w
		}
		remainder := sum % 97

		standard := 97 - remainder
		modern := standard + 55
		if modern >= 100 {
			modern -= 100
		}

		for _, check := range []int{standard, modern} {
			raw := fmt.Sprintf("GB%s%02d", prefix, check)
			id, err := ValidateIdentifier(raw, JurisdictionUK)
			require.NoError(t, err, "raw %s", raw)
			assert.Equal(t, KindUKVat9, id.Kind())
		}
	}
}
