// Package util provides utility functions for the signup service.
package util

import (
	"fmt"
	"math/rand/v2"
)

// Reference identifier format constants.
const (
	// ReferencePrefix is the fixed prefix for application reference numbers.
	ReferencePrefix = "TPS-2025"
	// referenceMin and referenceMax bound the 5-digit reference suffix.
	referenceMin = 10000
	referenceMax = 99999
)

// GenerateReferenceID generates an application reference in the
// TPS-2025-##### format, where ##### is a 5-digit number.
// Uses math/rand/v2; reference IDs are identifiers, not secrets.
func GenerateReferenceID() string {
	n := referenceMin + rand.IntN(referenceMax-referenceMin+1)
	return fmt.Sprintf("%s-%d", ReferencePrefix, n)
}
