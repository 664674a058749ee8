package annotation

import "sort"

// Store is an immutable collection of Records indexed by image id. Every
// Record handed out is a deep copy.
type Store struct {
	records []Record
	index   map[string][]int
	files   int
}

func newStore(records []Record, files int) *Store {
	s := &Store{
		records: records,
		index:   make(map[string][]int),
		files:   files,
	}
	for i, r := range records {
		s.index[r.ImageID] = append(s.index[r.ImageID], i)
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Files returns the number of annotation files the load visited, including
// files that were skipped.
func (s *Store) Files() int {
	return s.files
}

// Records returns a copy of all records in store order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone()
	}
	return out
}

// RecordsFor returns the records of one image in store order. The result is
// empty, never nil, when the image has no records.
func (s *Store) RecordsFor(imageID string) []Record {
	idx := s.index[imageID]
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.records[i].clone())
	}
	return out
}

// ClassCounts returns the number of records per label.
func (s *Store) ClassCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.records {
		counts[r.Label]++
	}
	return counts
}

// Images returns the distinct image ids, sorted.
func (s *Store) Images() []string {
	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns a new Store holding the records for which keep is true.
// The file count carries over.
func (s *Store) Filter(keep func(Record) bool) *Store {
	var out []Record
	for _, r := range s.records {
		if keep(r.clone()) {
			out = append(out, r.clone())
		}
	}
	return newStore(out, s.files)
}

// Exclude selects which flagged entries Filter drops.
type Exclude struct {
	Difficult bool
	Truncated bool
	Occluded  bool
}

// Keep reports whether r passes the exclusion flags.
func (e Exclude) Keep(r Record) bool {
	switch {
	case e.Difficult && r.IsDifficult():
		return false
	case e.Truncated && r.IsTruncated():
		return false
	case e.Occluded && r.IsOccluded():
		return false
	}
	return true
}
