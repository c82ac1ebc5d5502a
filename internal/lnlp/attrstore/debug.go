package attrstore

import "fmt"

// reflectStringer is the fallback debug projection for values that don't
// implement DebugProjector. It is captured once at insertion time so the
// store never needs to hold a live reference just to support display.
func reflectStringer(value any) string {
	return fmt.Sprintf("%+v", value)
}
