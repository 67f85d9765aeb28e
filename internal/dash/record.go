package dash

import "context"

// Record is a resource row held in a collection. Records are plain value
// structs so drafts can be compared with ==.
type Record interface {
	comparable

	// RecordID returns the server-assigned id. Zero means not yet persisted.
	RecordID() int64

	// SearchFields returns the values matched against a search term.
	SearchFields() []string
}

// ResourceClient issues CRUD calls against one backend collection.
type ResourceClient[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int64, draft T) (T, error)
	Delete(ctx context.Context, id int64) error
}
