package pages

import (
	"fmt"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/model"
)

// ObjectResolver follows indirect references.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// maxTreeDepth bounds page tree recursion for malformed files.
const maxTreeDepth = 256

// PageTree flattens a /Pages hierarchy into document order.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree returns a tree rooted at the catalog's /Pages dictionary.
// Nothing is read until the first GetPage or Pages call.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Pages returns every leaf page in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		w := walker{resolver: t.resolver, seen: map[int]bool{}}
		if err := w.visit(t.root, nil, 0); err != nil {
			return nil, fmt.Errorf("page tree: %w", err)
		}
		t.pages = w.pages
		if t.pages == nil {
			t.pages = []*Page{}
		}
	}
	return t.pages, nil
}

// GetPage returns the page at a zero-based index.
func (t *PageTree) GetPage(index int) (*Page, error) {
	all, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(all) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(all))
	}
	return all[index], nil
}

type walker struct {
	resolver ObjectResolver
	seen     map[int]bool
	pages    []*Page
}

// visit descends into node. ancestors holds the enclosing /Pages nodes,
// nearest first, for attribute inheritance.
func (w *walker) visit(node core.Dict, ancestors []core.Dict, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("nesting deeper than %d", maxTreeDepth)
	}
	kind, _ := node.GetName("Type")
	_, hasKids := node["Kids"]
	switch {
	case kind == "Page" || kind == "" && !hasKids:
		w.pages = append(w.pages, NewPage(node, w.resolver, ancestors...))
		return nil
	case kind != "Pages" && !hasKids:
		return fmt.Errorf("unexpected node type /%s", kind)
	}

	kids, err := w.resolver.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("resolve /Kids: %w", err)
	}
	arr, ok := kids.(core.Array)
	if !ok {
		return fmt.Errorf("/Kids is %T, want array", kids)
	}
	inherited := append([]core.Dict{node}, ancestors...)
	for i, kid := range arr {
		if ref, ok := kid.(core.IndirectRef); ok {
			if w.seen[ref.Number] {
				return fmt.Errorf("kid %d: object %d visited twice", i, ref.Number)
			}
			w.seen[ref.Number] = true
		}
		obj, err := w.resolver.Resolve(kid)
		if err != nil {
			return fmt.Errorf("resolve kid %d: %w", i, err)
		}
		dict, ok := obj.(core.Dict)
		if !ok {
			return fmt.Errorf("kid %d is %T, want dictionary", i, obj)
		}
		if err := w.visit(dict, inherited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Page is one leaf of the page tree.
type Page struct {
	dict      core.Dict
	ancestors []core.Dict
	resolver  ObjectResolver
}

// NewPage wraps a page dictionary. ancestors are the enclosing /Pages
// nodes, nearest first; inheritable attributes are looked up in them.
func NewPage(dict core.Dict, resolver ObjectResolver, ancestors ...core.Dict) *Page {
	return &Page{dict: dict, ancestors: ancestors, resolver: resolver}
}

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// inherited returns key from the page or its nearest ancestor that has
// it, resolved. It is nil when no node carries the key.
func (p *Page) inherited(key string) (core.Object, error) {
	obj := p.dict.Get(key)
	for _, a := range p.ancestors {
		if obj != nil {
			break
		}
		obj = a.Get(key)
	}
	if obj == nil {
		return nil, nil
	}
	return p.resolver.Resolve(obj)
}

// MediaBox returns [x1 y1 x2 y2] as written, possibly inherited.
func (p *Page) MediaBox() ([]float64, error) {
	return p.box("MediaBox")
}

// CropBox returns the crop box, falling back to the media box.
func (p *Page) CropBox() ([]float64, error) {
	if box, err := p.box("CropBox"); err == nil {
		return box, nil
	}
	return p.MediaBox()
}

func (p *Page) box(key string) ([]float64, error) {
	obj, err := p.inherited(key)
	if err != nil {
		return nil, fmt.Errorf("resolve /%s: %w", key, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("/%s not found", key)
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("/%s is not a four-number array", key)
	}
	box := make([]float64, 4)
	for i := range arr {
		elem, err := p.resolver.Resolve(arr[i])
		if err != nil {
			return nil, fmt.Errorf("resolve /%s[%d]: %w", key, i, err)
		}
		switch v := elem.(type) {
		case core.Int:
			box[i] = float64(v)
		case core.Real:
			box[i] = float64(v)
		default:
			return nil, fmt.Errorf("/%s[%d] is %T", key, i, elem)
		}
	}
	return box, nil
}

// ViewBox is the crop box clipped to the media box. A missing or empty
// intersection yields the media box.
func (p *Page) ViewBox() (model.BBox, error) {
	media, err := p.MediaBox()
	if err != nil {
		return model.BBox{}, err
	}
	mediaBox := toBBox(media)
	crop, err := p.box("CropBox")
	if err != nil {
		return mediaBox, nil
	}
	view := toBBox(crop).Intersection(mediaBox)
	if view.Width <= 0 || view.Height <= 0 {
		return mediaBox, nil
	}
	return view, nil
}

func toBBox(b []float64) model.BBox {
	return model.NewBBoxFromPoints(model.Point{X: b[0], Y: b[1]}, model.Point{X: b[2], Y: b[3]})
}

// Rotate returns the inherited /Rotate normalized to 0, 90, 180 or 270.
func (p *Page) Rotate() int {
	obj, err := p.inherited("Rotate")
	if err != nil {
		return 0
	}
	switch v := obj.(type) {
	case core.Int:
		return model.NormalizeRotation(int(v))
	case core.Real:
		return model.NormalizeRotation(int(v))
	}
	return 0
}

// Width is the displayed width. Quarter turns swap width and height.
func (p *Page) Width() (float64, error) {
	w, h, err := p.size()
	if p.quarterTurned() {
		return h, err
	}
	return w, err
}

// Height is the displayed height.
func (p *Page) Height() (float64, error) {
	w, h, err := p.size()
	if p.quarterTurned() {
		return w, err
	}
	return h, err
}

func (p *Page) size() (w, h float64, err error) {
	box, err := p.ViewBox()
	return box.Width, box.Height, err
}

func (p *Page) quarterTurned() bool {
	r := p.Rotate()
	return r == 90 || r == 270
}

// Resources returns the inherited /Resources dictionary.
func (p *Page) Resources() (core.Dict, error) {
	obj, err := p.inherited("Resources")
	if err != nil {
		return nil, fmt.Errorf("resolve /Resources: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("/Resources not found")
	}
	d, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Resources is %T, want dictionary", obj)
	}
	return d, nil
}

// Contents returns the page's content streams in order. A page without
// /Contents has none.
func (p *Page) Contents() ([]core.Object, error) {
	raw := p.dict.Get("Contents")
	if raw == nil {
		return nil, nil
	}
	obj, err := p.resolver.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("resolve /Contents: %w", err)
	}
	switch v := obj.(type) {
	case *core.Stream:
		return []core.Object{v}, nil
	case core.Array:
		out := make([]core.Object, len(v))
		for i, elem := range v {
			if out[i], err = p.resolver.Resolve(elem); err != nil {
				return nil, fmt.Errorf("resolve /Contents[%d]: %w", i, err)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("/Contents is %T", obj)
}
