// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package serde converts system documents to and from HCL.
//
// A serialized document looks like:
//
//	schema_version = 1
//	base_power     = 100
//	base_frequency = 60
//
//	composition "DynamicGenerator" {
//	  roles = ["Machine", "Shaft", "AVR", "Governor", "PSS"]
//	}
//
//	component "Bus" "Bus 1" {
//	  variant   = "Bus"
//	  available = true
//	  uuid      = "3d0c…"
//	  parameters {
//	    number   = 1
//	    bus_type = "REF"
//	  }
//	  references {}
//	}
//
//	component "DynamicInjection" "gen-2-1-dyn" {
//	  variant = "DynamicGenerator"
//	  …
//	  references {
//	    static_injection = "gen-2-1"
//	  }
//	  block "Machine" {
//	    variant = "OneDOneQMachine"
//	    parameters { … }
//	  }
//	}
//
// Components appear in registry insertion order and reference each other by
// name, so reordering records never changes their meaning. Reading happens
// in two passes: the first decodes and instantiates every record, the second
// validates, composes and registers them, resolving references across the
// whole document.
package serde
