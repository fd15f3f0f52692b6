package parser

import (
	"regexp"
	"strings"
)

// Side identifies a physical side of a card.
type Side string

const (
	Front Side = "FRONT"
	Back  Side = "BACK"
)

// markerStrategies are tried in order; the first that finds a marker wins.
var markerStrategies = []*regexp.Regexp{
	regexp.MustCompile(`(?i)---\s*(FRONT|BACK)\s*---`),
	regexp.MustCompile(`(?i)---\s*(FRONT\s*SIDE|BACK\s*SIDE)\s*---`),
	regexp.MustCompile(`(?i)---[^-]*?(FRONT|BACK)[^-]*?---`),
}

var (
	frontSliceRe = regexp.MustCompile(`(?is)---[^-]*?FRONT[^-]*?---(.*?)(?:---[^-]*?BACK[^-]*?---|$)`)
	backSliceRe  = regexp.MustCompile(`(?is)---[^-]*?BACK[^-]*?---(.*)$`)
)

// Segment splits a raw scan into front and back text. Text with no
// recognisable marker is returned whole as the front. Segment never fails.
func Segment(raw string) (front, back string) {
	for _, re := range markerStrategies {
		if f, b, ok := splitOnMarkers(raw, re); ok {
			front, back = f, b
			break
		}
	}
	if front == "" && back == "" {
		if m := frontSliceRe.FindStringSubmatch(raw); m != nil {
			front = strings.TrimSpace(m[1])
		}
		if m := backSliceRe.FindStringSubmatch(raw); m != nil {
			back = strings.TrimSpace(m[1])
		}
	}
	if front == "" && back == "" {
		front = strings.TrimSpace(raw)
	}
	return front, back
}

// splitOnMarkers assigns the text after each marker to the side the marker
// names. A later marker for the same side replaces the earlier text.
func splitOnMarkers(raw string, re *regexp.Regexp) (front, back string, ok bool) {
	locs := re.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return "", "", false
	}
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := raw[loc[1]:end]
		if body == "" {
			continue
		}
		label := strings.ToLower(raw[loc[2]:loc[3]])
		switch {
		case strings.Contains(label, "front"):
			front = strings.TrimSpace(body)
		case strings.Contains(label, "back"):
			back = strings.TrimSpace(body)
		}
	}
	return front, back, true
}
