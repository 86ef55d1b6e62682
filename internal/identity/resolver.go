package identity

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
)

// ErrIdentityUnresolved means no candidate identifier on the principal could
// be matched to a vendor record. Callers must refuse the request; this is a
// security gate, not a soft fallback.
var ErrIdentityUnresolved = errors.New("identity could not be resolved to a vendor record")

// compositeID matches legacy business ids of the form {role}-{year}-{sequence}.
var compositeID = regexp.MustCompile(`^(\d+)-(\d{4})-(\d+)$`)

// Principal is the authenticated caller as extracted from the bearer token.
type Principal struct {
	PrimaryID   string
	SecondaryID string
	Role        string
}

// VendorLookup is the subset of vendor storage the resolver needs.
type VendorLookup interface {
	FindByBusinessID(ctx context.Context, businessID string) (*models.Vendor, error)
	FindByUserUUID(ctx context.Context, userUUID string) (*models.Vendor, error)
	FindByNumericID(ctx context.Context, id uint) (*models.Vendor, error)
}

type Resolver struct {
	vendors VendorLookup
}

func NewResolver(vendors VendorLookup) *Resolver {
	return &Resolver{vendors: vendors}
}

// Resolve maps a principal onto the canonical composite business id used to
// tag bookings. Two identifier schemes coexist in the data (user UUIDs and
// composite business ids), so each candidate is tried in several shapes. The
// numeric-suffix fallback exists for legacy composite ids whose sequence part
// doubles as the vendor's numeric key; it is migration debt kept for backward
// compatibility while old data is still around.
func (r *Resolver) Resolve(ctx context.Context, p Principal) (string, error) {
	for _, candidate := range []string{p.PrimaryID, p.SecondaryID} {
		if candidate == "" {
			continue
		}

		if v, err := r.vendors.FindByBusinessID(ctx, candidate); err == nil {
			return v.BusinessID, nil
		}

		if v, err := r.vendors.FindByUserUUID(ctx, candidate); err == nil {
			return v.BusinessID, nil
		}

		m := compositeID.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		seq, err := strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			continue
		}
		if v, err := r.vendors.FindByNumericID(ctx, uint(seq)); err == nil {
			return v.BusinessID, nil
		}
	}

	return "", ErrIdentityUnresolved
}

// IsComposite reports whether an identifier is in the composite
// {role}-{year}-{sequence} form.
func IsComposite(id string) bool {
	return compositeID.MatchString(id)
}
