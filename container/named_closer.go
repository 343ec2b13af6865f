package container

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

type Closer interface {
	io.Closer

	Name() string
}

type NamedCloser struct {
	name   string
	closer io.Closer
}

func (d *NamedCloser) Close() error {
	if d.closer == nil {
		return nil
	}

	return d.closer.Close()
}

func (d *NamedCloser) Name() string {
	return d.name
}

var _ Closer = (*NamedCloser)(nil)

func NewNamedCloser(name string, closer io.Closer) *NamedCloser {
	return &NamedCloser{
		name:   name,
		closer: closer,
	}
}

// CloseAll closes in reverse order and combines every error, prefixed with the closer name.
func CloseAll(closers []Closer) (err error) {
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if c == nil {
			continue
		}

		if _err := c.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", c.Name(), _err))
		}
	}

	return
}
