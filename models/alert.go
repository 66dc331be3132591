package models

import (
	"strings"
)

// SegmentKind identifies which rule produced a segment of an alert message
type SegmentKind string

const (
	SegmentDisease  SegmentKind = "disease"
	SegmentHumidity SegmentKind = "humidity"
	SegmentSummary  SegmentKind = "summary"
)

// Segment is one block of text in an alert message
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// AlertMessage is the ordered set of segments built for a single run
type AlertMessage struct {
	Segments []Segment `json:"segments"`
}

// Add appends a segment
func (m *AlertMessage) Add(kind SegmentKind, text string) {
	m.Segments = append(m.Segments, Segment{Kind: kind, Text: text})
}

// Empty reports whether there is nothing to send
func (m AlertMessage) Empty() bool {
	return len(m.Segments) == 0
}

// Count returns how many segments of the given kind the message holds
func (m AlertMessage) Count(kind SegmentKind) int {
	n := 0
	for _, s := range m.Segments {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// String renders the message body, one blank line between segments
func (m AlertMessage) String() string {
	parts := make([]string, 0, len(m.Segments))
	for _, s := range m.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n")
}
