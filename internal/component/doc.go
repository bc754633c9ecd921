// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package component defines the shape shared by every entity stored in a
// system document: buses, branches, static injections and dynamic
// injections.
//
// # Core Concepts
//
//   - Base: the identity record (name, availability, UUID) embedded by every
//     concrete component.
//
//   - Kind: the discriminating tag used by the registry to index and query
//     components. A component's Variant further names its concrete type
//     (e.g. "Line" or "Transformer2W" for a Branch).
//
//   - Reference: a by-name link from one component to another. References are
//     never pointers; the registry resolves them on demand, which keeps
//     ownership single-directional.
//
//   - Error: the structured failure value carrying one of the package's
//     sentinel errors together with the name of the offending component and
//     the field, role or reference that was violated.
package component
