package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/paklijst/internal/model"
)

// Backend is the storage capability behind the item lists. Implementations
// keep one isolated collection per owner key and assign item ids that are
// never reused.
type Backend interface {
	// Items returns every item of the owner, deleted ones included, by id.
	Items(ctx context.Context, owner string) ([]model.Item, error)

	// Item returns one item or model.ErrNotFound.
	Item(ctx context.Context, owner string, id int64) (*model.Item, error)

	// Insert stores a new item and returns it with its assigned id.
	Insert(ctx context.Context, owner string, item model.Item) (*model.Item, error)

	// Update applies fn to the stored item and writes the result back in
	// one step. Returns model.ErrNotFound if the item does not exist.
	Update(ctx context.Context, owner string, id int64, fn func(*model.Item)) (*model.Item, error)

	// UnpackAll unpacks every packed, non-deleted item in one atomic write
	// and returns the number of items changed.
	UnpackAll(ctx context.Context, owner string, at time.Time) (int, error)

	// Replace swaps the entire collection of the owner. Either all items
	// are replaced or none are.
	Replace(ctx context.Context, owner string, items []model.Item) error

	Close() error
}

// ioError marks a backend failure.
func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrIO, err)
}
