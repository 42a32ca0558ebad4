// Package acs contains the core components for assembling American Community Survey (ACS)
// summary-file tables. The Census Bureau distributes each release as per-state archives of
// estimate ("e") and margin of error ("m") files, grouped into numbered sequences. This root
// package defines the types shared by the assembly pipeline and the interfaces through which
// it consumes its collaborators (jurisdiction lists, download caches, record readers and
// geography lookups), and is a good overview of the key concepts.
//
// Subpackages implement the pipeline itself: slicer extracts byte ranges from records,
// source and assemble stitch per-state file pairs into table rows, jam and transform
// convert raw cells into numbers, and moe and frame propagate the published 90%
// margins of error through derived statistics.
package acs
