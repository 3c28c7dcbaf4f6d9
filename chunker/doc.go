// Package chunker implements the greedy paragraph-packing chunking engine.
//
// It is a pure function over normalised document text and is explicitly not
// a strict size ceiling: oversized single paragraphs pass through intact.
package chunker
