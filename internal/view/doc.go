// Package view implements the View Derivation Engine and the Sort Controller.
//
// A view is recomputed from scratch on every trigger: category filter,
// then case-insensitive search on name/symbol, then a stable sort.
// Nothing is patched incrementally.
package view
