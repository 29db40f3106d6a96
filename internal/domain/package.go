package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Expected package types. Other values are stored as given.
const (
	TypeLoose  = "loose"
	TypeCarton = "carton"
)

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrInvalidField    = errors.New("invalid package field")
)

// FieldError reports a package field that cannot be stored in a record line.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s=%q %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

// Represents a single inventory item held in a warehouse.
// A Package is immutable once created. SerialNumber is the lookup key but
// is not required to be unique.
type Package struct {
	SerialNumber string
	QualityMark  string
	Mass         float64
	Type         string
	DateAdded    time.Time
}

// NewPackage builds a Package stamped with the current time.
func NewPackage(serialNumber, qualityMark string, mass float64, packageType string) (*Package, error) {
	return newPackageAt(serialNumber, qualityMark, mass, packageType, time.Now())
}

func newPackageAt(serialNumber, qualityMark string, mass float64, packageType string, at time.Time) (*Package, error) {
	if strings.TrimSpace(serialNumber) == "" {
		return nil, &FieldError{Field: "serial_number", Value: serialNumber, Reason: "is required"}
	}

	fields := []struct{ name, value string }{
		{"serial_number", serialNumber},
		{"quality_mark", qualityMark},
		{"package_type", packageType},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, recordDelimiter+"\r\n") {
			return nil, &FieldError{Field: f.name, Value: f.value, Reason: "must not contain a comma or line break"}
		}
	}

	return &Package{
		SerialNumber: serialNumber,
		QualityMark:  qualityMark,
		Mass:         mass,
		Type:         packageType,
		DateAdded:    at,
	}, nil
}

func (p *Package) IsLoose() bool { return p.Type == TypeLoose }

func (p *Package) String() string {
	return fmt.Sprintf("Package(SerialNumber=%s, QualityMark=%s, Mass=%s, Type=%s)",
		p.SerialNumber, p.QualityMark, formatMass(p.Mass), p.Type)
}
