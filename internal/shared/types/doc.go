// Package types provides shared wire types.
//
// Float carries float64 values through JSON without losing NaN or the
// infinities, which the anomaly log and the HTTP API both need to report.
//
// Example Usage:
//
//	data, _ := json.Marshal([]types.Float{1.5, types.Float(math.Inf(1))})
//	// [1.5,"+Inf"]
package types
