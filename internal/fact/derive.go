package fact

import "strconv"

// Subtract derives a - b. Both must be present and parse as integers with
// the same unit suffix ("16384MiB" - "512MiB" = "15872MiB"); otherwise the
// result is absent with ParseMiss rather than a made-up number.
func Subtract(name string, a, b Fact) Fact {
	if !a.Present() || !b.Present() {
		return Absent(name, ParseMiss)
	}
	x, xUnit, ok := SplitNumber(a.Value())
	if !ok {
		return Absent(name, ParseMiss)
	}
	y, yUnit, ok := SplitNumber(b.Value())
	if !ok || xUnit != yUnit {
		return Absent(name, ParseMiss)
	}
	return Of(name, strconv.FormatInt(x-y, 10)+xUnit)
}

// Scale returns a Then transform that divides an integer value by divisor
// and appends unit, e.g. bytes to "MiB".
func Scale(divisor int64, unit string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		n, _, ok := SplitNumber(v)
		if !ok || divisor <= 0 {
			return "", false
		}
		return strconv.FormatInt(n/divisor, 10) + unit, true
	}
}
