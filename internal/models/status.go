package models

var statusRank = map[Status]int{
	StatusOnTrack:        0,
	StatusNeedsAttention: 1,
	StatusBehind:         2,
}

var statusLabels = map[Status]string{
	StatusOnTrack:        "On Track",
	StatusNeedsAttention: "Needs Attention",
	StatusBehind:         "Behind",
}

var statusColors = map[Status]string{
	StatusOnTrack:        "#16a34a",
	StatusNeedsAttention: "#f59e0b",
	StatusBehind:         "#dc2626",
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses from best (0) to worst. Unknown values rank as
// on-track.
func (s Status) Rank() int {
	return statusRank[s]
}

// Label returns the human-readable name.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "No Data"
}

// Color returns the display color.
func (s Status) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#9ca3af"
}
