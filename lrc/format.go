package lrc

import (
	"fmt"
	"time"
)

const centisecond = 10 * time.Millisecond

// FormatDuration renders d as "mm:ss.cc", rounded to centiseconds.
// Minutes are not wrapped into hours.
func FormatDuration(d time.Duration) string {
	cs := int64(d.Round(centisecond) / centisecond)
	minutes, rest := cs/6000, cs%6000
	return fmt.Sprintf("%02d:%02d.%02d", minutes, rest/100, rest%100)
}
