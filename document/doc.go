// Package document loads PDF bytes into a handle that the renderer and the
// text layer share.
//
// [Load] validates the file up front: the header must be a PDF header, the
// version at most 2.0, the cross-reference data readable and the page tree
// must hold at least one page. Every such failure matches [ErrDocumentLoad].
//
//	doc, err := document.Load(ctx, data)
//	if err != nil {
//	    return err
//	}
//	defer doc.Close()
//
//	page, err := doc.Page(ctx, 1)
//
// Pages are numbered from 1 and fetched on demand; nothing is cached
// between calls. A page number outside [1, PageCount] matches
// [ErrPageIndexOutOfRange].
package document
