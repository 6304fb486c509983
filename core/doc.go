// Package core is the PDF syntax layer: objects, the lexer and parser,
// cross-reference sections and object streams.
//
// Every parsed value implements [Object]. Scalars are plain Go types
// ([Int], [Real], [Name], [String], [Bool], [Null]); containers are [Array]
// and [Dict]; a [Stream] pairs a dictionary with raw bytes that
// [Stream.Decoded] runs through the filter chain once and caches.
// References stay unresolved as [IndirectRef] until a caller resolves them.
//
// The [Lexer] also tokenizes content streams, so operators such as T*, d0
// and the quote operators come back as keywords.
//
// [XRefParser] reads both classic tables and cross-reference streams and
// follows /Prev chains; [MergeXRefTables] folds incremental updates into
// one table. Objects compressed into object streams are read through
// [ObjectStream].
package core
