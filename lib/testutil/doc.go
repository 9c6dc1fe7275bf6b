// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Parley packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that individual tests do not
// need direct time.After calls. Engine tests drive the retry schedule
// with a fake clock while the call under test runs in a goroutine;
// the real wall-clock timeout is what converts a deadlock between the
// two into a test failure.
//
// Helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Parley-internal dependencies.
package testutil
