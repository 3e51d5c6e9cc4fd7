package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/record"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("storable: record not found")

// Backend stores records per collection.
type Backend interface {
	Read(ctx context.Context, collection string) ([]record.Payload, error)
	Create(ctx context.Context, collection string, p record.Payload) (record.Payload, error)
	Update(ctx context.Context, collection string, p record.Payload) (record.Payload, error)
	Destroy(ctx context.Context, collection string, id string) error
}

// Apply runs req against b. The first failing record aborts the batch and is
// reported as an unsuccessful response.
func Apply(ctx context.Context, b Backend, req collection.Request) *collection.Response {
	resp := &collection.Response{Success: true}
	fail := func(err error) *collection.Response {
		return &collection.Response{Success: false, Message: err.Error()}
	}

	switch req.Action {
	case collection.ActionRead:
		records, err := b.Read(ctx, req.Collection)
		if err != nil {
			return fail(err)
		}
		resp.Records = records
	case collection.ActionCreate:
		for _, p := range req.Records {
			created, err := b.Create(ctx, req.Collection, p)
			if err != nil {
				return fail(err)
			}
			resp.Records = append(resp.Records, created)
		}
	case collection.ActionUpdate:
		for _, p := range req.Records {
			updated, err := b.Update(ctx, req.Collection, p)
			if err != nil {
				return fail(fmt.Errorf("update %s: %w", p.ID, err))
			}
			resp.Records = append(resp.Records, updated)
		}
	case collection.ActionDestroy:
		for _, p := range req.Records {
			if err := b.Destroy(ctx, req.Collection, p.ID); err != nil {
				return fail(fmt.Errorf("destroy %s: %w", p.ID, err))
			}
		}
	default:
		return fail(fmt.Errorf("unknown action %q", req.Action))
	}
	return resp
}
