package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		str = str[1:]
	}

	var b strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatSigned prefixes positive amounts with a plus sign.
func FormatSigned(n int64) string {
	if n > 0 {
		return "+" + FormatNumber(n)
	}
	return FormatNumber(n)
}

// ProgressBar draws current/target as a fixed-width bar of block characters.
func ProgressBar(current, target, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if target > 0 {
		filled = min(max(current, 0)*width/target, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RelativeTime renders a Discord relative timestamp.
func RelativeTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
