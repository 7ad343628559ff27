// Package subtitles inspects SRT files for presentation. Stagehand never
// writes or edits subtitles; the pipeline's transcript agent owns them.
package subtitles

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Summary describes an SRT file for one-line display.
type Summary struct {
	Cues     int
	FirstCue time.Duration
	LastCue  time.Duration
}

// String renders the summary the way the run report prints it.
func (s Summary) String() string {
	if s.Cues == 0 {
		return "0 cues"
	}
	return fmt.Sprintf("%d cues, %s - %s", s.Cues,
		formatCueTime(s.FirstCue), formatCueTime(s.LastCue))
}

// Summarize reads an SRT file and reports cue count and time bounds.
func Summarize(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read srt: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	summary := Summary{}
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		if strings.TrimSpace(block) != "" {
			summary.Cues++
		}
	}
	if summary.Cues == 0 {
		return summary, nil
	}

	first := math.Inf(1)
	var last float64
	found := false
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if start, err := parseTimestamp(parts[0]); err == nil {
			if start < first {
				first = start
			}
			found = true
		}
		if end, err := parseTimestamp(parts[1]); err == nil && end > last {
			last = end
		}
	}
	if found {
		summary.FirstCue = secondsToDuration(first)
		summary.LastCue = secondsToDuration(last)
	}
	return summary, nil
}

// parseTimestamp converts an SRT timestamp (HH:MM:SS,mmm) to seconds. A
// period separator is tolerated since some writers emit it.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
}

func formatCueTime(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
