// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when no converter matched any candidate extension.
type UnsupportedFormatError struct {
	Extensions []string
}

func (e *UnsupportedFormatError) Error() string {
	if len(e.Extensions) == 0 {
		return "unsupported format"
	}
	quoted := make([]string, len(e.Extensions))
	for i, ext := range e.Extensions {
		quoted[i] = fmt.Sprintf("%q", ext)
	}
	return "unsupported format: tried " + strings.Join(quoted, ", ")
}

// FailedConversionAttempt records a converter that accepted but failed.
type FailedConversionAttempt struct {
	Converter string
	Extension string
	Err       error
}

// ConversionError is returned when every trial either failed or did not
// match, and at least one failed.
type ConversionError struct {
	Source   string
	Attempts []FailedConversionAttempt
}

func (e *ConversionError) Error() string {
	if len(e.Attempts) == 0 {
		return "conversion failed"
	}
	var b strings.Builder
	b.WriteString("conversion failed")
	if e.Source != "" {
		fmt.Fprintf(&b, " for %s", e.Source)
	}
	fmt.Fprintf(&b, " after %d attempt(s):", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s (%s): %v", a.Converter, a.Extension, a.Err)
	}
	return b.String()
}

// Unwrap returns the last error raised during dispatch.
func (e *ConversionError) Unwrap() error {
	if len(e.Attempts) > 0 {
		return e.Attempts[len(e.Attempts)-1].Err
	}
	return nil
}

// MissingContentTypeError is returned for HTTP responses without a Content-Type header.
type MissingContentTypeError struct {
	URL string
}

func (e *MissingContentTypeError) Error() string {
	if e.URL == "" {
		return "response Content-Type header is missing"
	}
	return fmt.Sprintf("response Content-Type header is missing: %s", e.URL)
}

// UnresolvedTypeError is returned when no extension can be determined for a local path.
type UnresolvedTypeError struct {
	Path string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("could not determine file type of %q: provide a file extension", e.Path)
}

// ValidationError wraps invalid caller-supplied options.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid options: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FetchError is returned when a URL fetch yields a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsConversionError reports whether the error is a ConversionError.
func IsConversionError(err error) bool {
	var target *ConversionError
	return errors.As(err, &target)
}
