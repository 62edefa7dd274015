package app

import "github.com/bft-labs/thumbship/internal/domain"

// Materialize maps a raw record into a working entity with no thumbnail.
func Materialize(r domain.RawRecord) domain.WorkingEntity {
	return domain.WorkingEntity{
		Index: r.Index,
		ID:    r.ID,
		URL:   r.URL,
	}
}

// MaterializeAll maps records in order.
func MaterializeAll(records []domain.RawRecord) []domain.WorkingEntity {
	entities := make([]domain.WorkingEntity, len(records))
	for i, r := range records {
		entities[i] = Materialize(r)
	}
	return entities
}
