package config

import "github.com/whenever-go/whenever/internal/model"

var commonEventKeys = []string{"name", "type", "tags", "condition"}

func decodeEvent(raw m, knownBuckets map[string]bool) (*model.Event, error) {
	name, err := raw.mandatoryStr("name")
	if err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	typ, err := raw.mandatoryStr("type")
	if err != nil {
		return nil, wrapItem("event", name, err)
	}
	cond, err := raw.mandatoryStr("condition")
	if err != nil {
		return nil, wrapItem("event", name, err)
	}
	if !knownBuckets[cond] {
		return nil, wrapItem("event", name, errf(kindUnknownName, "unknown bucket condition %q", cond))
	}

	e := &model.Event{Name: name, Condition: cond}
	switch typ {
	case "fschange":
		e.Variant = model.EventFSChange
		if err := raw.checkKeys(append(commonEventKeys, "paths", "recursive", "poll_seconds")...); err != nil {
			return nil, wrapItem("event", name, err)
		}
		paths := raw.strSlice("paths")
		if len(paths) == 0 {
			return nil, wrapItem("event", name, errf(kindMissingField, "fschange event needs at least one path"))
		}
		e.FSChange = &model.FSChangeSpec{
			Paths:       paths,
			Recursive:   raw.boolOr("recursive", false),
			PollSeconds: raw.intOr("poll_seconds", 30),
		}
	case "dbus":
		e.Variant = model.EventDBusSignal
		if err := raw.checkKeys(append(commonEventKeys,
			"bus", "interface", "member", "path", "parameter_check", "parameter_check_all")...); err != nil {
			return nil, wrapItem("event", name, err)
		}
		bus, err := raw.mandatoryStr("bus")
		if err != nil {
			return nil, wrapItem("event", name, err)
		}
		iface, err := raw.mandatoryStr("interface")
		if err != nil {
			return nil, wrapItem("event", name, err)
		}
		member, err := raw.mandatoryStr("member")
		if err != nil {
			return nil, wrapItem("event", name, err)
		}
		path, _ := raw.str("path")
		checks, err := decodeChecks(raw.list("parameter_check"))
		if err != nil {
			return nil, wrapItem("event", name, err)
		}
		e.DBusSignal = &model.DBusSignalSpec{
			Bus:       bus,
			Interface: iface,
			Member:    member,
			Path:      path,
			Checks:    checks,
			CheckAll:  raw.boolOr("parameter_check_all", true),
		}
	case "wmi":
		e.Variant = model.EventWMI
		if err := raw.checkKeys(append(commonEventKeys, "query")...); err != nil {
			return nil, wrapItem("event", name, err)
		}
		query, err := raw.mandatoryStr("query")
		if err != nil {
			return nil, wrapItem("event", name, err)
		}
		e.WMI = &model.WMIEventSpec{Query: query}
	case "command":
		e.Variant = model.EventCommand
		if err := raw.checkKeys(commonEventKeys...); err != nil {
			return nil, wrapItem("event", name, err)
		}
		e.Command = &model.CommandEventSpec{}
	default:
		return nil, wrapItem("event", name, errf(kindInvalidValue, "unknown event type %q", typ))
	}
	return e, nil
}
