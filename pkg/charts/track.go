package charts

import (
	"fmt"
	"strings"
)

// TrackPayload mirrors one track record as returned by the Shazam API.
//
// Chart endpoints return flat title/subtitle fields; some search shapes
// only carry them under a nested heading object.
type TrackPayload struct {
	Title    string        `json:"title,omitempty"`
	Subtitle *string       `json:"subtitle,omitempty"`
	Heading  *TrackHeading `json:"heading,omitempty"`
}

// TrackHeading is the nested title block of some search result shapes.
type TrackHeading struct {
	Title    string  `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
}

// Track is a displayable record normalized from the payload shapes.
type Track struct {
	Title    string
	Subtitle string
}

// normalizeTrack flattens one payload into a displayable track.
//
// Title falls back from the flat field to heading.title to "Unknown";
// subtitle falls back from the flat field to heading.subtitle to empty.
func normalizeTrack(payload TrackPayload) Track {
	title := payload.Title
	if title == "" && payload.Heading != nil {
		title = payload.Heading.Title
	}
	if title == "" {
		title = "Unknown"
	}

	subtitle := ""
	switch {
	case payload.Subtitle != nil:
		subtitle = *payload.Subtitle
	case payload.Heading != nil && payload.Heading.Subtitle != nil:
		subtitle = *payload.Heading.Subtitle
	}

	return Track{Title: title, Subtitle: subtitle}
}

// NormalizeTracks flattens payloads into displayable tracks, preserving order.
func NormalizeTracks(payloads []TrackPayload) []Track {
	tracks := make([]Track, 0, len(payloads))
	for _, payload := range payloads {
		tracks = append(tracks, normalizeTrack(payload))
	}
	return tracks
}

// FormatTracks renders tracks as a numbered list, one line per track,
// counting from 1.
func FormatTracks(tracks []Track) string {
	lines := make([]string, 0, len(tracks))
	for index, track := range tracks {
		lines = append(lines, fmt.Sprintf("%d. %s – %s", index+1, track.Title, track.Subtitle))
	}
	return strings.Join(lines, "\n")
}
