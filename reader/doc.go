// Package reader provides PDF object access over files and byte slices.
//
// A [Reader] wraps any io.ReadSeeker. Use [Open] for files on disk and
// [NewReaderFromBytes] for documents already in memory:
//
//	r, err := reader.NewReaderFromBytes(data)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
// # Cross-Reference Data
//
// Both classic xref tables and PDF 1.5 cross-reference streams are read,
// including incremental updates. Objects stored in object streams are
// extracted on demand and the parsed object streams are cached.
//
// When the xref data is missing or points at the wrong place, the file is
// scanned for object headers instead and [Reader.Rebuilt] reports true.
//
// # Concurrency
//
// Object access is serialized by a mutex and the page tree is walked
// once, so a single Reader can serve the page renderer and the text layer
// from different goroutines.
//
// # Page Content
//
//   - PageCount() and GetPage(index) walk the page tree (0-based)
//   - PageContent(page) returns the decoded, concatenated content streams
//   - NewPageExtractor(page) returns a text extractor with the page fonts
//   - ExtractTextContent(page) returns the ordered text items of a page
//   - ExtractPageImages(page) and DecodeImage(stream) decode image XObjects
//
// # Object Resolution
//
//   - GetObject(objNum) - load object by number
//   - ResolveReference(ref) - resolve an IndirectRef
//   - Resolve(obj) - resolve if indirect, otherwise return as-is
//   - ResolveDeep(obj) - recursively resolve all references, keeping cycles
package reader
