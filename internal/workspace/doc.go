// Package workspace manages the ephemeral scratch directory that holds the
// installed package tree and per-package probe/metafile intermediates for a
// single esmpack invocation.
package workspace
