package config

import "github.com/whenever-go/whenever/internal/model"

// decodeChecks parses a list of check tables into model.ParamCheck
// values, per §4.6/§4.7. Each entry is
//   { index = <int> | [<int|string>...], field = "<name>" (WMI field;
//     optional dict key for DBus),
//     op = "eq"|"neq"|..., value = <scalar> }
func decodeChecks(raw []any) ([]model.ParamCheck, error) {
	out := make([]model.ParamCheck, 0, len(raw))
	for _, e := range raw {
		cm, ok := asMap(e)
		if !ok {
			return nil, errf(kindInvalidType, "check entry must be a table")
		}
		if err := cm.checkKeys("index", "field", "op", "value"); err != nil {
			return nil, err
		}
		op, err := cm.mandatoryStr("op")
		if err != nil {
			return nil, err
		}
		field, _ := cm.str("field")
		var index []any
		if v, ok := cm["index"]; ok {
			switch t := v.(type) {
			case []any:
				index = t
			default:
				index = []any{v}
			}
		}
		out = append(out, model.ParamCheck{
			Index:    index,
			Field:    field,
			Operator: op,
			Value:    cm["value"],
		})
	}
	return out, nil
}
