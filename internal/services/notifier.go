package services

import (
	"context"
	"errors"

	"dompet/internal/core"
)

// Notifier is told about every confirmed mutation.
type Notifier interface {
	Notify(ctx context.Context, ev core.ChangeEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev core.ChangeEvent) error

func (f NotifierFunc) Notify(ctx context.Context, ev core.ChangeEvent) error {
	return f(ctx, ev)
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev core.ChangeEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, core.ChangeEvent) error { return nil }
