package model

import "time"

// TimeSpec is a partial time specification as described in §4.4: omitted
// components act as wildcards (matching the finest applicable
// granularity rule), conflicting specs simply never match.
type TimeSpec struct {
	Year    *int
	Month   *int // 1-12
	Day     *int // 1-31
	Weekday *time.Weekday
	Hour    *int
	Minute  *int
	Second  *int
}

// IntervalSpec holds the fields specific to an Interval condition.
type IntervalSpec struct {
	Interval time.Duration
}

// TimeCondSpec holds the fields specific to a Time condition.
type TimeCondSpec struct {
	Specs []TimeSpec
}

// IdleSpec holds the fields specific to an Idle condition.
type IdleSpec struct {
	IdleSeconds time.Duration
}

// ParamCheck is a single parameter/result check as described in §4.6/§4.7.
type ParamCheck struct {
	Index    []any // int or string elements; first is always int for DBus
	Field    string // WMI result-check field name; for DBus, an optional key into the dict at Index
	Operator string // eq, neq, gt, ge, lt, le, match, contains, ncontains
	Value    any
}

// DBusSpec holds the fields specific to a DBus condition (method call).
type DBusSpec struct {
	Bus       string // ":session" or ":system"
	Service   string
	Object    string
	Interface string
	Method    string
	Params    []any
	Checks    []ParamCheck
	CheckAll  bool
}

// WMISpec holds the fields specific to a WMI condition (query).
type WMISpec struct {
	Query     string
	Checks    []ParamCheck
	CheckAll  bool
}

// BucketSpec holds the fields specific to a Bucket condition: the name
// is implicit (the condition's own name is the bucket key referenced by
// events).
type BucketSpec struct{}
