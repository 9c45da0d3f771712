package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidAsset is returned when an asset fails validation.
var ErrInvalidAsset = errors.New("invalid asset")

// AssetKind discriminates the tracked asset variants.
type AssetKind string

const (
	KindComputer AssetKind = "computer"
	KindPhone    AssetKind = "phone"
)

// AssetKinds lists all known kinds in display order.
var AssetKinds = []AssetKind{KindComputer, KindPhone}

// ParseAssetKind accepts "computer" or "phone" in any case.
func ParseAssetKind(s string) (AssetKind, error) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindComputer:
		return KindComputer, nil
	case KindPhone:
		return KindPhone, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidAsset, s)
	}
}

// Label returns the human-readable name of the kind.
func (k AssetKind) Label() string {
	switch k {
	case KindComputer:
		return "Computer"
	case KindPhone:
		return "Phone"
	default:
		return string(k)
	}
}

// Office is the location an asset is assigned to.
type Office string

const (
	OfficeUSA     Office = "USA"
	OfficeGermany Office = "Germany"
	OfficeSweden  Office = "Sweden"
)

// Offices lists the known office locations.
var Offices = []Office{OfficeUSA, OfficeGermany, OfficeSweden}

// ParseOffice matches a known office case-insensitively.
func ParseOffice(s string) (Office, error) {
	for _, o := range Offices {
		if strings.EqualFold(strings.TrimSpace(s), string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: unknown office %q", ErrInvalidAsset, s)
}

// LocalCurrency returns the currency an office reports in.
func (o Office) LocalCurrency() (Currency, bool) {
	switch o {
	case OfficeUSA:
		return USD, true
	case OfficeGermany:
		return EUR, true
	case OfficeSweden:
		return SEK, true
	default:
		return "", false
	}
}

// Asset is a tracked device. It exclusively owns its purchase price.
type Asset struct {
	ID           int64         `json:"id"`
	Kind         AssetKind     `json:"kind"`
	Brand        string        `json:"brand"`
	Model        string        `json:"model"`
	Office       Office        `json:"office"`
	PurchaseDate time.Time     `json:"purchaseDate"`
	Price        MonetaryValue `json:"price"`
}

// Validate checks the asset invariants against the reference time now.
// The office is free text here; known offices are enforced by ParseOffice at input.
func (a Asset) Validate(now time.Time) error {
	if strings.TrimSpace(a.Brand) == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidAsset)
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidAsset)
	}
	if a.Kind != KindComputer && a.Kind != KindPhone {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAsset, a.Kind)
	}
	if a.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrInvalidAsset)
	}
	if a.PurchaseDate.After(now) {
		return fmt.Errorf("%w: purchase date %s is in the future", ErrInvalidAsset, a.PurchaseDate.Format(time.DateOnly))
	}
	if err := a.Price.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	return nil
}

// Lifecycle classifies the asset at now.
func (a Asset) Lifecycle(now time.Time) Lifecycle {
	return Classify(a.PurchaseDate, now)
}
