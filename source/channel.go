package source

import (
	"context"

	"github.com/pkg/errors"
)

// Channel is a Source that reads items from a channel. Pull blocks until an
// item arrives, and reports exhaustion once Input is closed.
//
// If Errs is set, an error received on it fails the source. Nil errors are
// ignored, and a closed Errs channel is simply no longer watched.
type Channel[T any] struct {
	// Input is the channel from which this source will read items.
	// The Channel source will not close this channel.
	Input <-chan T

	// Errs is an optional channel of source failures.
	Errs <-chan error
}

// ChannelConfig provides configuration options for creating a Channel source.
type ChannelConfig[T any] struct {
	// Input is required.
	Input <-chan T

	// Errs is optional.
	Errs <-chan error
}

// Validate checks if the ChannelConfig is valid.
func (c ChannelConfig[T]) Validate() error {
	if c.Input == nil {
		return errors.New("input channel cannot be nil")
	}
	return nil
}

// NewChannel creates a new Channel source with the given configuration.
//
// Example:
//
//	input := make(chan string, 10)
//	src, err := source.NewChannel(source.ChannelConfig[string]{Input: input})
//	if err != nil {
//		// handle error
//	}
func NewChannel[T any](config ChannelConfig[T]) (*Channel[T], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid channel config")
	}

	return &Channel[T]{
		Input: config.Input,
		Errs:  config.Errs,
	}, nil
}

// Pull implements the batch.Source interface.
func (s *Channel[T]) Pull(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case item, ok := <-s.Input:
			if !ok {
				return zero, false, nil
			}
			return item, true, nil
		case err, ok := <-s.Errs:
			if !ok {
				s.Errs = nil
				continue
			}
			if err != nil {
				return zero, false, err
			}
		}
	}
}
