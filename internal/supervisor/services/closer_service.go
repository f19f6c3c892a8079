// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package services

import (
	"context"
	"fmt"
	"io"
)

// CloserService closes a resource when the supervisor tree stops.
//
// Components that only expose Close (the recommendation log writer, the
// key-value store) are registered through it so shutdown reaches them.
type CloserService struct {
	closer io.Closer
	name   string
}

// NewCloserService wraps closer under the given service name.
func NewCloserService(name string, closer io.Closer) *CloserService {
	return &CloserService{closer: closer, name: name}
}

// Serve implements suture.Service. It blocks until ctx is canceled.
func (c *CloserService) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := c.closer.Close(); err != nil {
		return fmt.Errorf("%s close: %w", c.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer.
func (c *CloserService) String() string {
	return c.name
}
