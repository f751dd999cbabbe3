package main

import (
	"errors"

	mdconvert "github.com/mdconvert/markdown-convert"
	"github.com/mdconvert/markdown-convert/internal/assets"
	"github.com/mdconvert/markdown-convert/internal/extras"
	"github.com/mdconvert/markdown-convert/internal/fileutil"
	"github.com/mdconvert/markdown-convert/internal/hints"
)

// hintedError carries a hint that needs context only the caller had.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }

// withHint attaches hint to err. Empty hints return err unchanged.
func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var hinted *hintedError
	var extErr *fileutil.ExtensionError

	switch {
	case errors.As(err, &hinted):
		return hinted.hint
	case errors.Is(err, mdconvert.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdconvert.ErrRenderTimeout):
		return hints.ForTimeout(false)
	case errors.Is(err, fileutil.ErrOutputDirNotFound):
		return hints.ForOutputDirectory()
	case errors.As(err, &extErr):
		return hints.ForWrongExtension(extErr.Want)
	case errors.Is(err, mdconvert.ErrUnknownExtra):
		return hints.ForUnknownExtra(extras.BuiltinNames())
	case errors.Is(err, mdconvert.ErrInvalidStyle):
		return hints.ForStyleNotFound(assets.BuiltinStyles())
	}
	return ""
}
