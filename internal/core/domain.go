package core

import (
	"errors"
	"time"
)

const (
	// Discount kinds supported by the platform.
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type (
	DiscountType string

	// Date is a calendar date without a time component, as served by the
	// platform API (YYYY-MM-DD).
	Date struct {
		time.Time
	}

	// AcademicYear groups terms and class rosters.
	AcademicYear struct {
		ID        string
		Name      string // e.g. "2024/2025"
		StartDate Date
		EndDate   Date
		IsCurrent bool
	}

	// Term belongs to one academic year. Terms are totally ordered by
	// StartDate within a year; the earliest is the anchor term used to
	// attribute annual charges.
	Term struct {
		ID             string
		AcademicYearID string
		Name           string
		StartDate      Date
		EndDate        Date
	}

	// StructureSummary is the list form of a fee structure, without line
	// items. Multiple structures may exist for the same (class, term)
	// pair; the first one in the platform's list order is authoritative.
	StructureSummary struct {
		ID        string
		ClassID   string
		TermID    string
		CreatedAt time.Time
	}

	// LineItem is one named charge within a fee structure. Amount is kept
	// as the raw decimal string served by the API; it is parsed only at
	// aggregation time. Names are not guaranteed unique within a structure.
	LineItem struct {
		Name     string
		Amount   string
		IsAnnual bool
	}

	// FeeStructure is the detail form including ordered line items.
	FeeStructure struct {
		StructureSummary
		LineItems []LineItem
	}

	// ClassInfo is one roster entry of an academic year.
	ClassInfo struct {
		ID         string
		Name       string
		CampusName string
	}

	// Parent is a guardian record.
	Parent struct {
		ID        string
		FirstName string
		LastName  string
		Email     string
		Phone     string
		Address   string
		CreatedAt time.Time
	}

	// Discount is a school-wide fee discount. Percentage is set for
	// percentage discounts, Amount for fixed ones.
	Discount struct {
		ID         string
		Name       string
		Type       DiscountType
		Percentage int
		Amount     Money
		Active     bool
	}

	// ClassFeeStatus is the platform's per-class collection record.
	ClassFeeStatus struct {
		ClassID   string
		Collected Money
		Waived    Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTermList = errors.New("empty term list")
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MustDate is a test and fixture helper; it panics on malformed input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// FullName joins the parent's first and last name for display.
func (p Parent) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
