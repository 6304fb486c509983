package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/pages"
)

// headerWindow bounds the search for the %PDF- marker.
const headerWindow = 1024

var (
	versionPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)
	objectHeader   = regexp.MustCompile(`(\d+)[ \t\r\n\f\x00]+(\d+)[ \t\r\n\f\x00]+obj\b`)
)

// PDFVersion is the header version, e.g. 1.7.
type PDFVersion struct {
	Major int
	Minor int
}

func (v PDFVersion) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// Reader gives random access to the objects of one PDF file. It is safe
// for concurrent use.
type Reader struct {
	mu         sync.Mutex // guards src and both caches
	src        io.ReadSeeker
	closer     io.Closer
	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream

	xrefTable *core.XRefTable
	trailer   core.Dict
	version   PDFVersion
	size      int64
	rebuilt   bool

	treeOnce sync.Once
	pageTree *pages.PageTree
	treeErr  error
}

var _ pages.ObjectResolver = (*Reader)(nil)

// NewReader reads the header and cross-reference data of src. src is
// closed by Close when it implements io.Closer.
func NewReader(src io.ReadSeeker) (*Reader, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("determine size: %w", err)
	}
	r := &Reader{
		src:        src,
		size:       size,
		objCache:   map[int]core.Object{},
		objStreams: map[int]*core.ObjectStream{},
	}
	r.closer, _ = src.(io.Closer)

	if r.version, err = r.parseHeader(); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if r.xrefTable, err = r.loadXRef(); err != nil {
		table, rerr := r.rebuildXRef()
		if rerr != nil {
			return nil, fmt.Errorf("xref: %w (rebuild: %v)", err, rerr)
		}
		r.xrefTable, r.rebuilt = table, true
	}
	r.trailer = r.xrefTable.Trailer
	return r, nil
}

func NewReaderFromBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data))
}

// Open opens a file on disk.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the source. Later calls do nothing.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.closer
	r.closer = nil
	if c == nil {
		return nil
	}
	return c.Close()
}

func (r *Reader) parseHeader() (PDFVersion, error) {
	if _, err := r.src.Seek(0, io.SeekStart); err != nil {
		return PDFVersion{}, err
	}
	head, err := io.ReadAll(io.LimitReader(r.src, headerWindow))
	if err != nil {
		return PDFVersion{}, err
	}
	m := versionPattern.FindSubmatch(head)
	if m == nil {
		return PDFVersion{}, fmt.Errorf("no %%PDF- marker in the first %d bytes", headerWindow)
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// loadXRef follows startxref and, for updated files, the /Prev chain.
func (r *Reader) loadXRef() (*core.XRefTable, error) {
	xp := core.NewXRefParser(r.src)
	table, err := xp.ParseXRefFromEOF()
	if err != nil {
		return nil, err
	}
	if !table.Trailer.Has("Prev") {
		return table, nil
	}
	chain, err := xp.ParseAllXRefs()
	if err != nil {
		return nil, err
	}
	return core.MergeXRefTables(chain...), nil
}

// rebuildXRef recovers a damaged file by scanning it for "n g obj"
// headers. Later definitions of a number win, like incremental updates.
// The trailer is the last one in the file, or failing that a dictionary
// pointing at the last catalog found.
func (r *Reader) rebuildXRef() (*core.XRefTable, error) {
	if _, err := r.src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.src)
	if err != nil {
		return nil, err
	}

	table := core.NewXRefTable()
	for _, m := range objectHeader.FindAllSubmatchIndex(data, -1) {
		if m[0] > 0 && !isSpace(data[m[0]-1]) {
			continue
		}
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		table.Set(num, &core.XRefEntry{
			Type:       core.XRefEntryUncompressed,
			Offset:     int64(m[0]),
			Generation: gen,
			InUse:      true,
		})
	}
	if table.Size() == 0 {
		return nil, fmt.Errorf("no objects found")
	}

	if i := bytes.LastIndex(data, []byte("trailer")); i >= 0 {
		obj, err := core.NewParser(bytes.NewReader(data[i+len("trailer"):])).ParseObject()
		if d, ok := obj.(core.Dict); err == nil && ok && d.Has("Root") {
			table.Trailer = d
			return table, nil
		}
	}

	// Without a usable trailer, point /Root at the catalog.
	r.xrefTable = table
	catalog := -1
	for num := range table.Entries {
		obj, err := r.getObject(num)
		if err != nil {
			continue
		}
		if d, ok := obj.(core.Dict); ok && num > catalog {
			if t, _ := d.GetName("Type"); t == "Catalog" {
				catalog = num
			}
		}
	}
	r.objCache = map[int]core.Object{}
	if catalog < 0 {
		return nil, fmt.Errorf("no catalog found")
	}
	table.Trailer = core.Dict{"Root": core.IndirectRef{Number: catalog}}
	return table, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (r *Reader) Version() PDFVersion { return r.version }

func (r *Reader) Trailer() core.Dict { return r.trailer }

func (r *Reader) FileSize() int64 { return r.size }

func (r *Reader) XRefTable() *core.XRefTable { return r.xrefTable }

// Rebuilt reports whether the cross-reference data had to be recovered
// by scanning the file.
func (r *Reader) Rebuilt() bool { return r.rebuilt }

// NumObjects returns the trailer's /Size.
func (r *Reader) NumObjects() int {
	n, _ := r.trailer.GetInt("Size")
	return int(n)
}

// GetObject returns object num, loading and caching it on first use.
func (r *Reader) GetObject(num int) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getObject(num)
}

// getObject requires r.mu.
func (r *Reader) getObject(num int) (core.Object, error) {
	if obj, ok := r.objCache[num]; ok {
		return obj, nil
	}
	e, ok := r.xrefTable.Get(num)
	switch {
	case !ok:
		return nil, fmt.Errorf("object %d not in xref", num)
	case !e.InUse:
		return nil, fmt.Errorf("object %d is free", num)
	}

	var obj core.Object
	var err error
	if e.Type == core.XRefEntryCompressed {
		obj, err = r.fromObjectStream(num, int(e.Offset))
	} else {
		obj, err = r.parseAt(num, e.Offset)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[num] = obj
	return obj, nil
}

func (r *Reader) parseAt(num int, offset int64) (core.Object, error) {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	p := core.NewParser(r.src)
	p.SetReferenceResolver(lockedResolver{r})
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	if ind.Ref.Number != num {
		return nil, fmt.Errorf("xref points object %d at object %d", num, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) fromObjectStream(num, container int) (core.Object, error) {
	stm, ok := r.objStreams[container]
	if !ok {
		obj, err := r.getObject(container)
		if err != nil {
			return nil, fmt.Errorf("object stream %d: %w", container, err)
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object stream %d is %T", container, obj)
		}
		if stm, err = core.NewObjectStream(s); err != nil {
			return nil, fmt.Errorf("object stream %d: %w", container, err)
		}
		r.objStreams[container] = stm
	}
	obj, _, err := stm.GetObjectByNumber(num)
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", num, container, err)
	}
	return obj, nil
}

// lockedResolver serves indirect /Length values while a parse already
// holds r.mu, restoring the read position afterwards.
type lockedResolver struct{ r *Reader }

func (l lockedResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	pos, err := l.r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	defer l.r.src.Seek(pos, io.SeekStart)
	return l.r.getObject(ref.Number)
}

func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve follows obj when it is a reference and returns it unchanged
// otherwise.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// ResolveDeep replaces every reference inside obj by its target. A
// reference back into an object being resolved is left as is.
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolveDeep(obj, map[int]bool{})
}

func (r *Reader) resolveDeep(obj core.Object, active map[int]bool) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		if active[ref.Number] {
			return ref, nil
		}
		active[ref.Number] = true
		defer delete(active, ref.Number)
	}
	obj, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case core.Array:
		out := make(core.Array, len(v))
		for i := range v {
			if out[i], err = r.resolveDeep(v[i], active); err != nil {
				return nil, err
			}
		}
		return out, nil
	case core.Dict:
		out := make(core.Dict, len(v))
		for k := range v {
			if out[k], err = r.resolveDeep(v[k], active); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return obj, nil
}

// dictAt resolves the trailer entry key to a dictionary. A missing
// optional entry yields nil.
func (r *Reader) dictAt(key string, required bool) (core.Dict, error) {
	raw := r.trailer.Get(key)
	if raw == nil {
		if required {
			return nil, fmt.Errorf("trailer has no /%s", key)
		}
		return nil, nil
	}
	obj, err := r.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("/%s: %w", key, err)
	}
	d, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/%s is %T, want dictionary", key, obj)
	}
	return d, nil
}

// GetCatalog returns the /Root dictionary.
func (r *Reader) GetCatalog() (core.Dict, error) { return r.dictAt("Root", true) }

// GetInfo returns the /Info dictionary, or nil when there is none.
func (r *Reader) GetInfo() (core.Dict, error) { return r.dictAt("Info", false) }

func (r *Reader) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objCache)
}

func (r *Reader) ObjectStreamCacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objStreams)
}

// ClearCache forgets every loaded object.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objCache = map[int]core.Object{}
	r.objStreams = map[int]*core.ObjectStream{}
}
