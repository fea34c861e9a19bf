package mpr

import "strconv"

// fmtAt renders a coordinate at the working precision. Negative zero is
// normalized so -0.000 never reaches the artifact.
func fmtAt(v float64, precision int) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// fmt6 renders a header variable; the macro header requires six decimal
// places regardless of the working precision.
func fmt6(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
