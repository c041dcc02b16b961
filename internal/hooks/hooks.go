// Package hooks runs ordered before-create steps over a draft record.
package hooks

import (
	"context"
	"fmt"
)

// Step mutates the draft or rejects it.
type Step[T any] struct {
	Name string
	Run  func(ctx context.Context, draft *T) error
}

// Pipeline is an ordered list of steps. The zero value is an empty pipeline.
type Pipeline[T any] []Step[T]

// Run applies every step in order and stops at the first error.
func (p Pipeline[T]) Run(ctx context.Context, draft *T) error {
	for _, step := range p {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Run(ctx, draft); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

// Names lists the step names in execution order.
func (p Pipeline[T]) Names() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.Name
	}
	return names
}
