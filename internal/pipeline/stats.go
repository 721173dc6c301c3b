package pipeline

// Stats tracks aggregate counters across one mapping session.
type Stats struct {
	Total        int
	Current      int
	Converted    int
	Skipped      int
	Failed       int
	Unclassified int
}
