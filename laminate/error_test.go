package laminate

import (
	"testing"
)

// Make sure error messages never panic and are never empty.  The
// testing of individual cases (and removal of unused errors) we
// leave to the functional testing done of other files.
func TestErrorNoPanicNoEmpty(t *testing.T) {
	defer (func() {
		if e := recover(); e != nil {
			t.Fatalf("Panic during testing: %v", e)
		}
	})()
	for sc := int(UnknownScope); sc <= int(MaxScope); sc++ {
		for st := int(UnknownStructure); st < int(MaxStructure); st++ {
			for at := int(UnknownAttribute); at < int(MaxAttribute); at++ {
				for co := int(UnknownCondition); co < int(MaxCondition); co++ {
					e := Error{
						Scope:     ErrorScope(sc),
						Structure: ErrorStructure(st),
						Attribute: ErrorAttribute(at),
						Condition: ErrorCondition(co),
					}
					m := e.Error()
					t.Log(m)
					if len(m) == 0 {
						t.Errorf("Empty error message for %+v", e)
					}
				}
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	overflow := Error{
		Scope:     GaugeScope,
		Structure: ScopeStructure,
		Condition: GaugeOverflowCondition,
		Values:    ErrorData{10, 8},
	}
	expected := "Invalid gauge target: Gauge counts total 10 but only 8 positions are available"
	if m := overflow.Error(); m != expected {
		t.Errorf("Overflow message %q, expected %q", m, expected)
	}
	conflict := Error{
		Scope:     RuleScope,
		Structure: ScopeStructure,
		Condition: ConflictingRulesCondition,
		Values:    ErrorData{"plusMinus45", "balance"},
	}
	expected = "Invalid rule set: Rule plusMinus45 subsumes rule balance; enable only one"
	if m := conflict.Error(); m != expected {
		t.Errorf("Conflict message %q, expected %q", m, expected)
	}
	tooSmall := Error{
		Scope:     RuleScope,
		Structure: AttributeValueStructure,
		Attribute: MaxRunAttribute,
		Condition: TooSmallCondition,
		Values:    ErrorData{0, 1},
	}
	expected = "Invalid rule set: Contiguity limit (0): Must be at least 1"
	if m := tooSmall.Error(); m != expected {
		t.Errorf("Contiguity message %q, expected %q", m, expected)
	}
	canned := Error{Message: "precooked"}
	if m := canned.Error(); m != "precooked" {
		t.Errorf("Canned message %q, expected %q", m, "precooked")
	}
}
