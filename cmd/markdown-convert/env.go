package main

import (
	"context"
	"io"
	"os"
	"time"

	mdconvert "github.com/mdconvert/markdown-convert"
)

// fileConverter is the part of mdconvert.Converter the CLI drives.
type fileConverter interface {
	ConvertFile(ctx context.Context, input mdconvert.FileInput) (*mdconvert.Result, error)
	Close() error
}

// Compile-time interface implementation check.
var _ fileConverter = (*mdconvert.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// NewConverter builds the converter used for every render.
	NewConverter func(opts ...mdconvert.Option) (fileConverter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewConverter: func(opts ...mdconvert.Option) (fileConverter, error) {
			return mdconvert.NewConverter(opts...)
		},
	}
}
