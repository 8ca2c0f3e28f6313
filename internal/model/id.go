package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/divmain/janus/internal/janus"
)

// reservedPrefix is the one prefix a ticket id may never use, since it
// collides with the plan namespace.
const reservedPrefix = "plan"

var ticketIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+-[0-9a-f]{4,8}$`)
var planIDPattern = regexp.MustCompile(`^plan-[0-9a-f]{4,8}$`)

// ValidateTicketID checks the `<prefix>-<hex>` shape: prefix is
// alphanumeric plus `-`/`_` and is not the reserved word "plan"; hex is
// 4-8 lowercase hex characters.
func ValidateTicketID(id string) error {
	if !ticketIDPattern.MatchString(id) {
		return janus.NewValidationError("ticket id %q does not match <prefix>-<hex>", id)
	}
	prefix := id[:len(id)-len(hexSuffix(id))-1]
	if prefix == reservedPrefix {
		return janus.NewValidationError("ticket id %q uses reserved prefix %q", id, reservedPrefix)
	}
	return nil
}

// ValidatePlanID checks the `plan-<hex>` shape.
func ValidatePlanID(id string) error {
	if !planIDPattern.MatchString(id) {
		return janus.NewValidationError("plan id %q does not match plan-<hex>", id)
	}
	return nil
}

func hexSuffix(id string) string {
	i := len(id) - 1
	for i >= 0 && isHexDigit(id[i]) {
		i--
	}
	return id[i+1:]
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f')
}

// existsFunc reports whether an id is already taken; both the ticket
// and plan id generators take one so the store can be consulted
// without this package depending on it.
type existsFunc func(id string) bool

// GenerateTicketID produces a fresh, collision-free id with the given
// prefix. Per invariant 2, collisions are resolved by retrying with an
// escalating hex length from 4 to 8; after 40 retries at each length it
// gives up and reports IdGenerationExhausted.
func GenerateTicketID(prefix string, exists existsFunc) (string, error) {
	if prefix == reservedPrefix {
		return "", janus.NewValidationError("prefix %q is reserved", reservedPrefix)
	}
	return generateID(prefix, exists)
}

// GeneratePlanID produces a fresh, collision-free plan id using the
// same escalating-retry strategy as GenerateTicketID.
func GeneratePlanID(exists existsFunc) (string, error) {
	return generateID(reservedPrefix, exists)
}

const retriesPerLength = 40

func generateID(prefix string, exists existsFunc) (string, error) {
	for hexLen := 4; hexLen <= 8; hexLen++ {
		for attempt := 0; attempt < retriesPerLength; attempt++ {
			suffix, err := randomHex(hexLen)
			if err != nil {
				return "", janus.NewIOError("", err)
			}
			candidate := fmt.Sprintf("%s-%s", prefix, suffix)
			if exists == nil || !exists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", janus.NewIDGenerationExhausted(prefix)
}

func randomHex(n int) (string, error) {
	// n hex characters need ceil(n/2) bytes; odd n is trimmed below.
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	s := hex.EncodeToString(buf)
	return s[:n], nil
}
