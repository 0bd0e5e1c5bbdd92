// Package transform implements the document operations: merge, split,
// compress, rotate, encrypt, decrypt, and format conversion.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// System applies document transforms.
type System interface {
	Apply(ctx context.Context, req Request) (*Result, error)
}

type system struct {
	logger *slog.Logger
}

// New creates a transform System.
func New(logger *slog.Logger) System {
	return &system{logger: logger}
}

func (s *system) Apply(ctx context.Context, req Request) (*Result, error) {
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one document required", ErrInsufficientInputs)
	}

	start := time.Now()

	var (
		result *Result
		err    error
	)

	switch req.Operation {
	case OpMerge:
		result, err = s.merge(ctx, req)
	case OpSplit:
		result, err = s.split(ctx, req)
	case OpCompress:
		result, err = s.compress(req)
	case OpRotate:
		result, err = s.rotate(req)
	case OpEncrypt:
		result, err = s.encrypt(req)
	case OpDecrypt:
		result, err = s.decrypt(req)
	case OpConvert:
		result, err = s.convert(req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}

	if err != nil {
		s.logger.Warn("transform failed",
			"operation", req.Operation,
			"inputs", len(req.Inputs),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("transform applied",
		"operation", req.Operation,
		"inputs", len(req.Inputs),
		"output_size", len(result.Data),
		"duration", time.Since(start),
	)

	return result, nil
}

// single returns the sole input for operations that accept exactly one
// document.
func (s *system) single(req Request) (Input, error) {
	if len(req.Inputs) != 1 {
		return Input{}, fmt.Errorf("%w: operation %q accepts exactly one document",
			ErrInvalidParameter, req.Operation)
	}
	return req.Inputs[0], nil
}
