package store

import "slices"

// Stats returns the side's outcome counts for a node. Unknown nodes yield zero counts.
func (s *Store) Stats(side Side, id NodeID) ResultCounts {
	if c, ok := s.stats[side][id]; ok {
		return *c
	}
	return ResultCounts{}
}

// HasStats reports whether at least one real game for the side passed through the node.
func (s *Store) HasStats(side Side, id NodeID) bool {
	c, ok := s.stats[side][id]
	return ok && c.Total() > 0
}

// RecordResult counts one game outcome at a node.
func (s *Store) RecordResult(side Side, id NodeID, r Result) {
	c, ok := s.stats[side][id]
	if !ok {
		c = &ResultCounts{}
		s.stats[side][id] = c
	}
	c.Add(r)
	s.touch()
}

// SetStats replaces a node's counts. Zero counts remove the record.
func (s *Store) SetStats(side Side, id NodeID, counts ResultCounts) {
	if counts.Total() == 0 {
		delete(s.stats[side], id)
	} else {
		c := counts
		s.stats[side][id] = &c
	}
	s.touch()
}

// StatNodes returns the ids that carry statistics for the side, ascending.
func (s *Store) StatNodes(side Side) []NodeID {
	ids := make([]NodeID, 0, len(s.stats[side]))
	for id := range s.stats[side] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HasReview reports whether the scheduling collaborator keeps a record for the node.
func (s *Store) HasReview(id NodeID) bool {
	_, ok := s.reviews[id]
	return ok
}

// Review returns the opaque scheduling record for the node.
func (s *Store) Review(id NodeID) ([]byte, bool) {
	r, ok := s.reviews[id]
	return r, ok
}

// SetReview replaces the scheduling record for the node.
func (s *Store) SetReview(id NodeID, record []byte) {
	s.reviews[id] = slices.Clone(record)
	s.touch()
}

// RemoveReview drops the scheduling record for the node.
func (s *Store) RemoveReview(id NodeID) {
	if _, ok := s.reviews[id]; !ok {
		return
	}
	delete(s.reviews, id)
	s.touch()
}
