package models

import "testing"

func TestSignupBonusPerRole(t *testing.T) {
	s := DefaultSettings()
	cases := map[string]int{
		RoleJobSeeker:   200,
		RoleEmployer:    10000,
		RoleInterviewer: 500,
		RoleAdmin:       0,
		"bogus":         0,
	}
	for role, want := range cases {
		if got := s.SignupBonus(role); got != want {
			t.Errorf("SignupBonus(%s): got %d, want %d", role, got, want)
		}
	}
}

func TestSettingsUpdateValidate(t *testing.T) {
	zero := 0
	neg := -1
	pos := 250

	if err := (PlatformSettingsUpdate{}).Validate(); err != nil {
		t.Errorf("empty update: %v", err)
	}
	if err := (PlatformSettingsUpdate{ContactRevealCost: &zero, JobSeekerSignupBonus: &pos}).Validate(); err != nil {
		t.Errorf("zero and positive values are valid: %v", err)
	}
	if err := (PlatformSettingsUpdate{InterviewRequestCost: &neg}).Validate(); err == nil {
		t.Error("negative value should be rejected")
	}
}
