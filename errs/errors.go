// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs defines the closed set of error kinds the indexer and
// search runtime surface to callers. Every fatal or user-facing error
// should wrap one of these sentinels so callers can classify failures
// with errors.Is instead of string matching.
package errs

import "errors"

var (
	// ErrConfigInvalid marks a schema mismatch in user-supplied config.
	// Fatal at startup.
	ErrConfigInvalid = errors.New("config invalid")

	// ErrIOFatal marks an unreadable input, unwriteable output, or
	// truncated block file. Fatal; the run aborts.
	ErrIOFatal = errors.New("io fatal")

	// ErrCorruptIndex marks an inconsistency in an on-disk index: an
	// offset past the buffer end, or front-coding that lands on an
	// invalid UTF-8 boundary. Fatal at runtime.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrQueryMalformed marks unbalanced quotes, an empty group, or an
	// oversized term. Surfaced to the caller as a failed query, never a
	// panic.
	ErrQueryMalformed = errors.New("query malformed")

	// ErrLoaderSkipped marks a non-UTF-8 path or unsupported extension.
	// Logged at warn; the document is skipped, not fatal.
	ErrLoaderSkipped = errors.New("loader skipped document")
)
