package domain

// RecordStore is the boundary to whatever keeps master records. Every call
// either succeeds or fails as a whole.
type RecordStore interface {
	// List returns the records of a form in natural (insertion) order.
	List(formID string) ([]Record, error)
	// Upsert inserts or replaces the record keyed by the form's id field and
	// returns the stored copy, including any assigned sequence id.
	Upsert(formID string, rec Record) (Record, error)
	// Remove deletes the record with the given id.
	Remove(formID, id string) error
}
