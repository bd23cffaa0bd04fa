// Package introspect describes schema objects. Describers fetch
// ObjectDescriptors from a live source (PostgreSQL, a CRM REST API) or from an
// in-memory schema, and Cache memoizes them for one graph session.
package introspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridoystarlord/relgraph/schema"
)

var (
	// ErrObjectNotFound is returned when the source has no object by that name.
	ErrObjectNotFound = errors.New("object not found")
	// ErrUnauthorized is returned when the source rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Describer returns the metadata of one object.
type Describer interface {
	Describe(ctx context.Context, objectName string) (schema.ObjectDescriptor, error)
}

// ObjectLister lists the objects a source can describe.
type ObjectLister interface {
	ListObjects(ctx context.Context) ([]schema.ObjectSummary, error)
}

// DescribeError reports a failed describe for a given object.
type DescribeError struct {
	Object string
	Err    error
}

func (e *DescribeError) Error() string {
	return fmt.Sprintf("describe %s: %v", e.Object, e.Err)
}

func (e *DescribeError) Unwrap() error {
	return e.Err
}

// describeErr wraps err unless it already is a DescribeError.
func describeErr(object string, err error) error {
	var de *DescribeError
	if errors.As(err, &de) {
		return err
	}
	return &DescribeError{Object: object, Err: err}
}
