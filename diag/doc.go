// Package diag
// Author: momentics <momentics@gmail.com>
//
// Diagnostics plumbing: a levelled logger and the api.Sink adapters the
// server wires per-connection events through.
package diag
