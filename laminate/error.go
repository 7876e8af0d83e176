// lamina.go - a composite laminate stacking-sequence generator.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package laminate

import (
	"fmt"
)

/*

Errors

*/

// An Error describes a problem with a laminate specification or a
// requested operation.  It can produce an error message in
// English, but its main function is to support localized error
// messaging by clients.  It tells the client "this thing failed
// to meet this condition", and provides supplemental details
// about the thing and the condition.
type Error struct {
	Scope     ErrorScope     `json:"scope"`
	Structure ErrorStructure `json:"structure,omitempty"`
	Condition ErrorCondition `json:"condition,omitempty"`
	Attribute ErrorAttribute `json:"attribute,omitempty"`
	Values    ErrorData      `json:"values,omitempty"`
	Message   string         `json:"message,omitempty"` // custom message
}

// An ErrorScope explains what type of thing the error is
// referring to.  In the case of client errors, this is either a
// client-supplied argument or some aspect of the resulting
// laminate.  In the case of internal logic errors, this is where
// in the code the failure occurred.
type ErrorScope int

// Constants for the various error scopes.
const (
	UnknownScope ErrorScope = iota
	RequestScope
	ArgumentScope
	GaugeScope
	RuleScope
	SequenceScope
	InternalScope
	MaxScope
)

// The ErrorStructure denotes whether the problem is in the
// overall Scope, an Attribute of the Scope, or the value of an
// Attribute of the Scope.
type ErrorStructure int

// Constants for the various structure codes.
const (
	UnknownStructure ErrorStructure = iota
	ScopeStructure
	AttributeStructure
	AttributeValueStructure
	MaxStructure
)

// The ErrorCondition is the predicate that the
// scope/attribute/value failed to satisfy.  There are a bunch of
// known, named predicates and then a "general" (arbitrary
// English string) predicate for runtime errors.
type ErrorCondition int

// Constants for the various error conditions
const (
	UnknownCondition ErrorCondition = iota
	GeneralCondition
	TooLargeCondition
	TooSmallCondition
	GaugeOverflowCondition
	ConflictingRulesCondition
	MinPercentageCondition
	NotInSetCondition
	InvalidArgumentCondition
	StateMismatchCondition
	MaxCondition
)

// An ErrorAttribute names the attribute that has a problem.
type ErrorAttribute int

// Constants for the various attribute codes.
const (
	UnknownAttribute ErrorAttribute = iota
	DecodeAttribute
	EncodeAttribute
	URLAttribute
	LocationAttribute
	NamedAttribute
	LengthAttribute
	GaugeAttribute
	AngleAttribute
	IndexAttribute
	MinFractionAttribute
	MaxRunAttribute
	MaxDeltaAttribute
	RuleAttribute
	SummaryAttribute
	MaxAttribute
)

// The ErrorData provides details about the thing that failed to
// meet the predicate (such as the value of an attribute) as well
// as the predicate itself (such as minimum required values).
//
// Every item in the slice of ErrorData is required to be
// JSON-serializable, so it can be returned to web clients.
// Sadly, there is no good way to express this condition in a way
// the compiler can check it, so we just have to rely on
// implementors to "do the right thing" and check the condition
// at runtime.
type ErrorData []interface{}

// Return an error string from an Error.  If the Error has a
// pre-canned message, this will use it, otherwise it will
// produce an appropriate (English, non-localized) message.
func (e Error) Error() string {
	es := e.Message
	if len(es) > 0 {
		return es
	}
	values := e.Values
	nextVal := func() interface{} {
		if len(values) == 0 {
			return "<unknown>"
		}
		val := values[0]
		values = values[1:]
		return val
	}
	switch e.Scope {
	case RequestScope:
		es = "Invalid request: "
	case ArgumentScope:
		es = "Invalid argument: "
	case GaugeScope:
		es = "Invalid gauge target: "
	case RuleScope:
		es = "Invalid rule set: "
	case SequenceScope:
		es = fmt.Sprintf("Problem at ply %v: ", nextVal())
	case InternalScope:
		es = "Internal logic error: "
	default:
		es = "Unknown error: "
	}
	if e.Structure == AttributeStructure || e.Structure == AttributeValueStructure {
		switch e.Attribute {
		case DecodeAttribute:
			es += "JSON Decode error"
		case EncodeAttribute:
			es += "JSON Encode error"
		case URLAttribute:
			es += "Resource path"
		case NamedAttribute:
			es += fmt.Sprint(nextVal())
		case LengthAttribute:
			es += "Sequence length"
		case GaugeAttribute:
			es += "Ply gauge"
		case AngleAttribute:
			es += "Angle"
		case IndexAttribute:
			es += "Index"
		case MinFractionAttribute:
			es += "Minimum fraction"
		case MaxRunAttribute:
			es += "Contiguity limit"
		case MaxDeltaAttribute:
			es += "Disorientation limit"
		case RuleAttribute:
			es += "Rule"
		case SummaryAttribute:
			es += "Summary"
		case LocationAttribute:
			es += fmt.Sprintf("In laminate.%v", nextVal())
		default:
			es += "<Unknown attribute>"
		}
		if e.Structure == AttributeValueStructure {
			es += " (" + fmt.Sprint(nextVal()) + ")"
		}
		es += ": "
	}
	switch e.Condition {
	case GeneralCondition:
		es += fmt.Sprint(nextVal())
	case TooLargeCondition:
		es += fmt.Sprintf("Must be at most %v", nextVal())
	case TooSmallCondition:
		es += fmt.Sprintf("Must be at least %v", nextVal())
	case GaugeOverflowCondition:
		es += fmt.Sprintf("Gauge counts total %v but only %v positions are available", nextVal(), nextVal())
	case ConflictingRulesCondition:
		es += fmt.Sprintf("Rule %v subsumes rule %v; enable only one", nextVal(), nextVal())
	case MinPercentageCondition:
		es += fmt.Sprintf("Orientation needs at least %v plies to meet the minimum percentage", nextVal())
	case NotInSetCondition:
		es += fmt.Sprintf("Must be in allowed values %v", nextVal())
	case InvalidArgumentCondition:
		es += fmt.Sprintf("Required value was missing or invalid")
	case StateMismatchCondition:
		es += fmt.Sprintf("Sequence state is inconsistent with its design vector")
	default:
		es += fmt.Sprintf("Supplemental data is %v", values)
	}
	return es
}

// rangeError returns an Error that describes an out-of-range argument.
func rangeError(attr ErrorAttribute, val interface{}, min int, max int) Error {
	err := Error{
		Scope:     ArgumentScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: TooLargeCondition,
		Values:    ErrorData{val, max},
	}
	if v, ok := val.(int); ok && v < min {
		err.Condition = TooSmallCondition
		err.Values[1] = min
	}
	return err
}

// ruleError returns an Error from a rule-set configuration
// problem discovered while validating a Summary.
func ruleError(attr ErrorAttribute, cond ErrorCondition, values ...interface{}) Error {
	return Error{
		Scope:     RuleScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: cond,
		Values:    ErrorData(values),
	}
}

// internalError builds the Error used to abort a search whose
// bookkeeping has become inconsistent.  These are programming
// defects, not user errors, so they are raised with panic rather
// than returned.
func internalError(location string, cond ErrorCondition, values ...interface{}) Error {
	vs := append(ErrorData{location}, values...)
	return Error{
		Scope:     InternalScope,
		Structure: AttributeStructure,
		Attribute: LocationAttribute,
		Condition: cond,
		Values:    vs,
	}
}
