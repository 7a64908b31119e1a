package hexiota

import (
	"strconv"
	"strings"
)

// String returns v in iota text notation. Parse reads it back.
func (v *Iota) String() string {
	if v == nil {
		return ""
	}
	var sb strings.Builder
	writeIota(&sb, v)
	return sb.String()
}

func writeIota(sb *strings.Builder, v *Iota) {
	switch v.typ {
	case TypePattern:
		sb.WriteString(v.pat.String())
	case TypeNumber:
		sb.WriteString(formatNumber(v.num))
	case TypeBoolean:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case TypeVector:
		sb.WriteByte('(')
		for i, c := range v.vec {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatNumber(c))
		}
		sb.WriteByte(')')
	case TypeNull:
		sb.WriteString("null")
	case TypeList:
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeIota(sb, e)
		}
		sb.WriteByte(']')
	case TypeText:
		sb.WriteByte('"')
		for i := 0; i < len(v.str); i++ {
			c := v.str[i]
			if c == '"' || c == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('"')
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
