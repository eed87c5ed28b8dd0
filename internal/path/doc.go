// Package path resolves dotted path expressions against decoded JSON values.
//
// A path is a list of dot-separated segments:
//   - an object key: "user.name"
//   - a non-negative array index: "items.0.name"
//   - the wildcard "*", expanding every element of the array at that position: "items.*.name"
//
// Wildcards may be chained ("a.*.b.*.c"): the remainder of the path is resolved
// again against each matched element, producing nested sequences.
//
// An expression starting with "$" is an RFC 9535 JSONPath query and always
// addresses the whole document rather than the current item.
//
// Resolution never fails: a location that does not exist resolves to Undefined.
package path
