package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBloodGroup(t *testing.T) {
	tests := []struct {
		input string
		want  BloodGroup
	}{
		{"A+", BloodGroupAPositive},
		{"a+", BloodGroupAPositive},
		{" o- ", BloodGroupONegative},
		{"APOS", BloodGroupAPositive},
		{"ab positive", BloodGroupABPositive},
		{"AB Negative", BloodGroupABNegative},
		{"bneg", BloodGroupBNegative},
		{"0+", BloodGroupOPositive},
		{"0-", BloodGroupONegative},
		{"o positive", BloodGroupOPositive},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBloodGroup(tt.input))
		})
	}
}

func TestNormalizeBloodGroupUnknownPassesThrough(t *testing.T) {
	got := NormalizeBloodGroup("xyz")
	assert.Equal(t, BloodGroup("XYZ"), got)
	assert.False(t, got.IsValid())
}

func TestBloodGroupIsValid(t *testing.T) {
	for _, g := range ValidBloodGroups() {
		assert.True(t, g.IsValid(), "%s", g)
	}

	assert.False(t, BloodGroup("").IsValid())
	assert.False(t, BloodGroup("C+").IsValid())
	assert.False(t, BloodGroup("a+").IsValid(), "validation happens after normalization")
}

func TestBloodGroupRhNegative(t *testing.T) {
	assert.True(t, BloodGroupANegative.RhNegative())
	assert.True(t, BloodGroupONegative.RhNegative())
	assert.False(t, BloodGroupAPositive.RhNegative())
	assert.False(t, BloodGroupABPositive.RhNegative())
}
