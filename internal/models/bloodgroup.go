// Package models defines the data structures for the donor matching engine.
package models

import "strings"

// BloodGroup represents one of the eight ABO/Rh blood groups.
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A+"
	BloodGroupANegative  BloodGroup = "A-"
	BloodGroupBPositive  BloodGroup = "B+"
	BloodGroupBNegative  BloodGroup = "B-"
	BloodGroupABPositive BloodGroup = "AB+"
	BloodGroupABNegative BloodGroup = "AB-"
	BloodGroupOPositive  BloodGroup = "O+"
	BloodGroupONegative  BloodGroup = "O-"
)

// ValidBloodGroups returns all valid blood group values.
func ValidBloodGroups() []BloodGroup {
	return []BloodGroup{
		BloodGroupAPositive,
		BloodGroupANegative,
		BloodGroupBPositive,
		BloodGroupBNegative,
		BloodGroupABPositive,
		BloodGroupABNegative,
		BloodGroupOPositive,
		BloodGroupONegative,
	}
}

// IsValid checks if the blood group is one of the eight ABO/Rh groups.
func (b BloodGroup) IsValid() bool {
	for _, valid := range ValidBloodGroups() {
		if b == valid {
			return true
		}
	}
	return false
}

// RhNegative reports whether the blood group carries a negative Rh factor.
func (b BloodGroup) RhNegative() bool {
	return strings.HasSuffix(string(b), "-")
}

// NormalizeBloodGroup converts various blood group spellings to standard values.
func NormalizeBloodGroup(group string) BloodGroup {
	normalized := strings.ToUpper(strings.TrimSpace(group))
	normalized = strings.ReplaceAll(normalized, " ", "")

	// Map common variations
	groupMap := map[string]BloodGroup{
		"A+":         BloodGroupAPositive,
		"APOS":       BloodGroupAPositive,
		"APOSITIVE":  BloodGroupAPositive,
		"A-":         BloodGroupANegative,
		"ANEG":       BloodGroupANegative,
		"ANEGATIVE":  BloodGroupANegative,
		"B+":         BloodGroupBPositive,
		"BPOS":       BloodGroupBPositive,
		"BPOSITIVE":  BloodGroupBPositive,
		"B-":         BloodGroupBNegative,
		"BNEG":       BloodGroupBNegative,
		"BNEGATIVE":  BloodGroupBNegative,
		"AB+":        BloodGroupABPositive,
		"ABPOS":      BloodGroupABPositive,
		"ABPOSITIVE": BloodGroupABPositive,
		"AB-":        BloodGroupABNegative,
		"ABNEG":      BloodGroupABNegative,
		"ABNEGATIVE": BloodGroupABNegative,
		"O+":         BloodGroupOPositive,
		"OPOS":       BloodGroupOPositive,
		"OPOSITIVE":  BloodGroupOPositive,
		"0+":         BloodGroupOPositive,
		"O-":         BloodGroupONegative,
		"ONEG":       BloodGroupONegative,
		"ONEGATIVE":  BloodGroupONegative,
		"0-":         BloodGroupONegative,
	}

	if mapped, ok := groupMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return BloodGroup(normalized)
}
