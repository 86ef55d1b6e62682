package policy

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/wedora/wedding-marketplace/booking-service/internal/identity"
	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
)

// Reason is the machine-readable rejection code returned to clients.
type Reason string

const (
	ReasonRoleNotVendor      Reason = "VENDOR_ACCESS_REQUIRED"
	ReasonMalformedID        Reason = "MALFORMED_USER_ID"
	ReasonVendorMissing      Reason = "VENDOR_RECORD_MISSING"
	ReasonCrossVendor        Reason = "CROSS_VENDOR_ACCESS_DENIED"
	ReasonIntegrityViolation Reason = "DATA_INTEGRITY_VIOLATION"
)

// AccessError is a guard rejection. Authorization failures are never
// downgraded; handlers map them straight onto 403/500 responses.
type AccessError struct {
	Reason  Reason
	Message string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// suspiciousIDs are identifier shapes that caused cross-tenant leaks in the
// past. A match is not an automatic rejection, but if such an id fails
// resolution the failure is reported as malformed rather than missing.
var suspiciousIDs = []*regexp.Regexp{
	regexp.MustCompile(`^[12]-2025-\d+$`),
}

func suspicious(id string) bool {
	if !identity.IsComposite(id) {
		return false
	}
	for _, re := range suspiciousIDs {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

// Guard decides whether an authenticated principal may touch resources
// belonging to a given vendor id.
type Guard struct {
	resolver *identity.Resolver
}

func NewGuard(resolver *identity.Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// AuthorizeVendor returns the principal's canonical vendor id when the
// requested vendor id belongs to the caller, or an AccessError otherwise.
// The ownership comparison is strict equality; there is no prefix or
// substring matching.
func (g *Guard) AuthorizeVendor(ctx context.Context, p identity.Principal, requestedVendorID string) (string, error) {
	if p.Role != "vendor" {
		return "", g.deny(p, requestedVendorID, &AccessError{
			Reason:  ReasonRoleNotVendor,
			Message: "vendor role required",
		})
	}

	canonical, err := g.resolver.Resolve(ctx, p)
	if err != nil {
		if suspicious(p.PrimaryID) || suspicious(p.SecondaryID) {
			return "", g.deny(p, requestedVendorID, &AccessError{
				Reason:  ReasonMalformedID,
				Message: "ambiguous identifier could not be resolved",
			})
		}
		return "", g.deny(p, requestedVendorID, &AccessError{
			Reason:  ReasonVendorMissing,
			Message: "no vendor record for authenticated user",
		})
	}

	if canonical != requestedVendorID {
		return "", g.deny(p, requestedVendorID, &AccessError{
			Reason:  ReasonCrossVendor,
			Message: "requested vendor does not match authenticated vendor",
		})
	}

	return canonical, nil
}

// VerifyOwnership re-checks every returned row against the canonical vendor
// id. Any violating row fails the whole result: a partial leak is still a
// leak, and it must surface loudly instead of being silently filtered.
func (g *Guard) VerifyOwnership(canonical string, bookings []models.Booking) error {
	for i := range bookings {
		if bookings[i].VendorID != canonical {
			log.Printf("[guard] integrity violation: booking %d owned by %q returned for vendor %q",
				bookings[i].ID, bookings[i].VendorID, canonical)
			return &AccessError{
				Reason:  ReasonIntegrityViolation,
				Message: "query returned rows owned by another vendor",
			}
		}
	}
	return nil
}

func (g *Guard) deny(p identity.Principal, resource string, accessErr *AccessError) error {
	log.Printf("[guard] denied principal=%q resource=%q reason=%s", p.PrimaryID, resource, accessErr.Reason)
	return accessErr
}
