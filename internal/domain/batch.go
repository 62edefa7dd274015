package domain

// Batch is a contiguous group of working entities processed with joined
// concurrency. Seq is the 1-based position of the batch in the run.
type Batch struct {
	Seq      int
	Entities []WorkingEntity
}

// Size returns the number of entities in the batch.
func (b Batch) Size() int {
	return len(b.Entities)
}

// Empty returns true if the batch has no entities.
func (b Batch) Empty() bool {
	return len(b.Entities) == 0
}

// Last returns the last entity in the original batch ordering, or nil if empty.
// It is a positional progress marker, not a success marker.
func (b Batch) Last() *WorkingEntity {
	if len(b.Entities) == 0 {
		return nil
	}
	return &b.Entities[len(b.Entities)-1]
}

// Partition splits entities into contiguous batches of at most size entities.
// The final batch may be shorter. size must be positive.
func Partition(entities []WorkingEntity, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}
	batches := make([]Batch, 0, (len(entities)+size-1)/size)
	for start := 0; start < len(entities); start += size {
		end := start + size
		if end > len(entities) {
			end = len(entities)
		}
		batches = append(batches, Batch{
			Seq:      len(batches) + 1,
			Entities: entities[start:end:end],
		})
	}
	return batches, nil
}
