// Package nbt implements the structured-data tag tree read by the game
// engine, with a recursive-descent parser and an exact-format emitter.
//
// # Data Model
//
// Numbers: byte, short, int, long, float, double
// Text:    string
// Containers: list (homogeneous), typed arrays, compound (ordered map)
//
// # Syntax
//
// Byte:       1b
// Short:      1s
// Int:        1
// Long:       1L
// Float:      1.5f
// Double:     1.5d or 1.5
// String:     "quoted \"text\"" (bare_words inside compounds)
// List:       [1,2,3]
// Arrays:     [B;1b,2b] [I;1,2] [L;1L,2L]
// Compound:   {key:1b,"quoted key":"v"}
//
// Compound entries keep insertion order through parsing and emitting.
package nbt
