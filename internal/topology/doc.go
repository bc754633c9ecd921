// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package topology defines the static network elements of a system document
// (buses, branches and static injections) and read-only connectivity queries
// over them.
//
// The package performs no electrical computation. Elements are pure
// structure plus parameters; their links to buses are expressed as bus
// names and resolved by the registry.
//
// # Connectivity
//
// A Network is an index built on demand from any sequence of components. It
// answers degree, incidence and orphan queries and groups buses into islands.
// ValidateConnectivity reports islands that do not have exactly one
// reference bus. The report is advisory: intermediate states, such as a
// reference bus that does not yet have a source attached, are legal while a
// document is being assembled.
package topology
