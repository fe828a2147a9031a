package handlers

import (
	"testing"

	"github.com/electromarket/electromarket/services/catalog-service/internal/model"
)

func TestValidateRulesAccepts(t *testing.T) {
	rules := []model.AvailabilityRule{
		{Weekday: 1, StartMinute: 540, EndMinute: 720, Active: true},
		{Weekday: 3, StartMinute: 840, EndMinute: 1080, Active: true},
	}
	if msg := validateRules(rules); msg != "" {
		t.Fatalf("expected valid rules, got %q", msg)
	}
	if msg := validateRules(nil); msg != "" {
		t.Fatalf("expected empty rule set to be valid, got %q", msg)
	}
}

func TestValidateRulesRejects(t *testing.T) {
	cases := []struct {
		name string
		rule model.AvailabilityRule
	}{
		{"weekday too large", model.AvailabilityRule{Weekday: 7, StartMinute: 540, EndMinute: 720}},
		{"negative weekday", model.AvailabilityRule{Weekday: -1, StartMinute: 540, EndMinute: 720}},
		{"start past midnight", model.AvailabilityRule{Weekday: 1, StartMinute: 1440, EndMinute: 1441}},
		{"end past midnight", model.AvailabilityRule{Weekday: 1, StartMinute: 540, EndMinute: 1441}},
		{"inverted window", model.AvailabilityRule{Weekday: 1, StartMinute: 720, EndMinute: 540}},
		{"empty window", model.AvailabilityRule{Weekday: 1, StartMinute: 540, EndMinute: 540}},
	}
	for _, tc := range cases {
		if msg := validateRules([]model.AvailabilityRule{tc.rule}); msg == "" {
			t.Fatalf("%s: expected a validation error", tc.name)
		}
	}
}

func TestValidateRulesCapsCount(t *testing.T) {
	rules := make([]model.AvailabilityRule, 51)
	for i := range rules {
		rules[i] = model.AvailabilityRule{Weekday: i % 7, StartMinute: 540, EndMinute: 720}
	}
	if msg := validateRules(rules); msg == "" {
		t.Fatal("expected rule count limit to reject 51 rules")
	}
}
