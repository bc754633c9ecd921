// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry is the name-indexed container of every component in a
// system document.
//
// Names are unique across all kinds. Components reference each other by
// name, and the registry refuses any mutation that would leave a reference
// dangling, point it at the wrong kind, or give an exclusive target a second
// holder. Every mutation runs as a transaction: a failing step rolls back the
// steps before it, so callers never observe a partial change.
//
// The registry stores and returns clones. Readers can hold on to a returned
// component, or to a Snapshot, without seeing later mutations.
package registry
