// Package matching implements the donor scoring and ranking engine.
package matching

import (
	"donor-matching-engine/internal/models"
)

// Compatibility score values.
const (
	scoreExactMatch     = 100
	scoreUniversalDonor = 90
	scoreCompatibleNeg  = 70
	scoreCompatiblePos  = 60
)

// donorsByRecipient maps each recipient blood group to the donor groups that
// can donate to it (ABO/Rh donation-compatibility table, not the receiving
// table).
var donorsByRecipient = map[models.BloodGroup][]models.BloodGroup{
	models.BloodGroupAPositive: {
		models.BloodGroupAPositive, models.BloodGroupANegative,
		models.BloodGroupOPositive, models.BloodGroupONegative,
	},
	models.BloodGroupANegative: {
		models.BloodGroupANegative, models.BloodGroupONegative,
	},
	models.BloodGroupBPositive: {
		models.BloodGroupBPositive, models.BloodGroupBNegative,
		models.BloodGroupOPositive, models.BloodGroupONegative,
	},
	models.BloodGroupBNegative: {
		models.BloodGroupBNegative, models.BloodGroupONegative,
	},
	// AB+ is the universal recipient.
	models.BloodGroupABPositive: {
		models.BloodGroupAPositive, models.BloodGroupANegative,
		models.BloodGroupBPositive, models.BloodGroupBNegative,
		models.BloodGroupABPositive, models.BloodGroupABNegative,
		models.BloodGroupOPositive, models.BloodGroupONegative,
	},
	models.BloodGroupABNegative: {
		models.BloodGroupANegative, models.BloodGroupBNegative,
		models.BloodGroupABNegative, models.BloodGroupONegative,
	},
	models.BloodGroupOPositive: {
		models.BloodGroupOPositive, models.BloodGroupONegative,
	},
	models.BloodGroupONegative: {
		models.BloodGroupONegative,
	},
}

// CompatibleDonorGroups returns the donor blood groups that can donate to the
// required group, or nil if the required group is unknown.
func CompatibleDonorGroups(required models.BloodGroup) []models.BloodGroup {
	groups, ok := donorsByRecipient[required]
	if !ok {
		return nil
	}
	out := make([]models.BloodGroup, len(groups))
	copy(out, groups)
	return out
}

// CompatibilityScore scores a donor blood group against the required group:
// exact match 100, O- universal donor 90, otherwise 70 for a compatible
// Rh-negative donor, 60 for a compatible Rh-positive donor, 0 if
// incompatible or either group is unknown. A score of 0 means the candidate
// is excluded from ranking entirely.
func CompatibilityScore(required, donor models.BloodGroup) int {
	if required == donor && required.IsValid() {
		return scoreExactMatch
	}

	if !canDonate(required, donor) {
		return 0
	}

	if donor == models.BloodGroupONegative {
		return scoreUniversalDonor
	}

	if donor.RhNegative() {
		return scoreCompatibleNeg
	}
	return scoreCompatiblePos
}

func canDonate(required, donor models.BloodGroup) bool {
	for _, g := range donorsByRecipient[required] {
		if g == donor {
			return true
		}
	}
	return false
}
