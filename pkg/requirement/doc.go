// Package requirement models "what is required to take a course" as a
// boolean-logic tree and evaluates it against a set of completed courses.
//
// # Condition Variants
//
// [Condition] is a closed sum type. Every value is exactly one of:
//
//   - [*Standalone]: exactly one required course
//   - [*Group]: an AND, OR or operator-less list of course codes and/or
//     nested conditions
//   - [*Wildcard]: any course in a code family such as "CMPUT 3xx"
//   - [*Text]: a purely descriptive requirement ("Consent of department")
//
// Code that inspects conditions uses a type switch over these four types;
// there is no other implementation of [Condition].
//
// # Wire Format
//
// Catalog datastores store conditions in the loosely typed shape produced by
// the extraction step:
//
//	{"operator": "AND", "conditions": [
//	    {"operator": "OR", "courses": ["CMPUT 175", "CMPUT 274"]},
//	    {"operator": "AND", "courses": ["MATH 125"]}
//	]}
//
// [Unmarshal], [FromWire] and [ToWire] convert between that shape and the
// typed tree. A node with no courses, no conditions and no text is malformed:
// lenient decoding keeps it as an empty [*Group] (which evaluates as
// satisfied), strict decoding rejects it with [ErrMalformed].
//
// # Evaluation
//
// [IsSatisfied] is a pure, total function. A nil condition is trivially
// satisfied. Groups combine their course list and nested conditions under
// their operator; operator-less groups require everything. Wildcards are
// satisfied when some completed course matches their pattern.
//
// # Course Codes
//
// [NormalizeCode] canonicalizes codes ("cmput174" → "CMPUT 174") and
// [CourseSet] stores completed courses under their normalized code, so
// callers never need to agree on spacing or case.
package requirement
