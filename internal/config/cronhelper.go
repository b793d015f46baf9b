package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/whenever-go/whenever/internal/model"
)

// cronToTimeSpec implements the Part D "cron" sugar for Time conditions:
// a standard 5-field crontab expression (minute hour dom month dow) is
// accepted as shorthand for a partial time specification (§4.4). Fields
// must each be either "*" or a single literal integer — ranges, steps
// and lists are rejected, since those have no single-instant
// partial-spec representation. The expression is first validated with
// robfig/cron's standard parser so malformed crontabs are rejected up
// front.
func cronToTimeSpec(expr string) (model.TimeSpec, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return model.TimeSpec{}, errf(kindInvalidValue, "invalid cron expression %q: %v", expr, err)
	}
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return model.TimeSpec{}, errf(kindInvalidValue, "cron expression %q must have 5 fields", expr)
	}
	spec := model.TimeSpec{}
	minute, err := cronLiteral(fields[0])
	if err != nil {
		return model.TimeSpec{}, err
	}
	hour, err := cronLiteral(fields[1])
	if err != nil {
		return model.TimeSpec{}, err
	}
	dom, err := cronLiteral(fields[2])
	if err != nil {
		return model.TimeSpec{}, err
	}
	month, err := cronLiteral(fields[3])
	if err != nil {
		return model.TimeSpec{}, err
	}
	dow, err := cronLiteral(fields[4])
	if err != nil {
		return model.TimeSpec{}, err
	}
	spec.Minute = minute
	spec.Hour = hour
	spec.Day = dom
	spec.Month = month
	if dow != nil {
		w := time.Weekday(*dow)
		spec.Weekday = &w
	}
	return spec, nil
}

func cronLiteral(field string) (*int, error) {
	if field == "*" {
		return nil, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return nil, errf(kindInvalidValue, "cron field %q is not a literal integer (ranges/steps/lists unsupported in shorthand)", field)
	}
	return &n, nil
}
