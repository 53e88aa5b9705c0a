package engine

import "fmt"

// FormatElapsed renders seconds as MM:SS. Minutes are not capped, so
// 6000 seconds is "100:00".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
