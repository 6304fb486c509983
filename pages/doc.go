// Package pages walks a PDF page tree.
//
// [PageTree] flattens the /Pages hierarchy into document order on first
// use; [Page] answers geometry and content questions for one leaf:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	p, err := tree.GetPage(0)
//	box, err := p.ViewBox()
//
// /MediaBox, /CropBox, /Resources and /Rotate are inherited from the
// nearest enclosing /Pages node that defines them. A tree that revisits
// an object is rejected.
package pages
