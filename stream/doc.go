// Package stream provides the cursor-based text reader shared by the
// structured-data and iota parsers, and the SyntaxError they report.
package stream
