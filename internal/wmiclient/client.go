// Package wmiclient adapts github.com/yusufpapurcu/wmi (backed by
// go-ole) for the WMI condition and event variants: run a WQL query and
// get back a generic row set, the shape checks.EvaluateResultChecks
// expects. Grounded on original_source's wmi_cond.rs / wmi_event.rs.
package wmiclient

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/yusufpapurcu/wmi"
)

// Query runs a WQL query and normalizes each result row into a
// field-name-to-value map. Field values come back from the underlying
// driver as variant-typed columns; ole.VARIANT is unwrapped to a plain
// Go scalar.
func Query(wql string) ([]map[string]any, error) {
	var raw []map[string]ole.VARIANT
	if err := wmi.QueryNamespace(wql, &raw, `root\cimv2`); err != nil {
		return nil, fmt.Errorf("wmi query: %w", err)
	}
	rows := make([]map[string]any, len(raw))
	for i, r := range raw {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v.Value()
		}
		rows[i] = row
	}
	return rows, nil
}
