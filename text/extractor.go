package text

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tsawler/pdfannotate/contentstream"
	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/font"
	"github.com/tsawler/pdfannotate/graphicsstate"
	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/pages"
)

// Resolver resolves indirect references.
type Resolver func(core.IndirectRef) (core.Object, error)

// spaceThreshold is the TJ adjustment (in thousandths of an em) beyond
// which a gap between two strings is treated as a word space.
const spaceThreshold = 200

// maxFormDepth bounds Form XObject nesting.
const maxFormDepth = 8

// Extractor walks content stream operations and produces TextItems in
// stream order.
type Extractor struct {
	interp *graphicsstate.Interpreter
	fonts  map[string]*font.Font
	styles map[string]TextStyle

	items []TextItem

	// OnItem, when set, receives every item as it is produced
	OnItem func(TextItem)

	// OnImage, when set, receives image XObjects with the CTM that maps
	// the unit square onto the page
	OnImage func(img *core.Stream, ctm model.Matrix)

	xobjects  core.Dict
	resolver  Resolver
	formDepth int
}

func NewExtractor() *Extractor {
	return &Extractor{
		interp: graphicsstate.NewInterpreter(),
		fonts:  map[string]*font.Font{},
		styles: map[string]TextStyle{},
	}
}

// Interpreter returns the graphics interpreter shared with the extractor.
// Setting its OnPaint callback lets a renderer see paths and text in a
// single pass.
func (e *Extractor) Interpreter() *graphicsstate.Interpreter { return e.interp }

func (e *Extractor) State() *graphicsstate.GraphicsState { return e.interp.State() }

// RegisterFont registers one of the standard 14 fonts, or a fallback
// with standard metrics, under a resource name.
func (e *Extractor) RegisterFont(name, baseFont, subtype string) {
	e.RegisterParsedFont(name, font.NewFont(name, baseFont, subtype))
}

// RegisterParsedFont registers a loaded font and derives its style.
func (e *Extractor) RegisterParsedFont(name string, f *font.Font) {
	key := strings.TrimPrefix(name, "/")
	e.fonts[key], e.styles[key] = f, styleFor(f)
}

// RegisterFontsFromPage loads the fonts and XObjects of the page's
// (possibly inherited) resources.
func (e *Extractor) RegisterFontsFromPage(page *pages.Page, resolver Resolver) error {
	res, err := page.Resources()
	if err != nil || res == nil {
		return nil
	}
	return e.RegisterFontsFromResources(res, resolver)
}

// RegisterFontsFromResources loads every entry of /Font. Fonts that fail
// to load are skipped; the extractor falls back to standard metrics for
// them when they are selected.
func (e *Extractor) RegisterFontsFromResources(res core.Dict, resolver Resolver) error {
	e.resolver = resolver
	if xobjs, err := e.subDict(res, "XObject"); err == nil && xobjs != nil {
		e.xobjects = xobjs
	}

	fonts, err := e.subDict(res, "Font")
	if err != nil {
		return fmt.Errorf("font resources: %w", err)
	}
	for name, obj := range fonts {
		d, err := resolveIfRef(obj, resolver)
		fd, ok := d.(core.Dict)
		if err != nil || !ok {
			continue
		}
		if f, err := font.Load(name, fd, font.Resolver(resolver)); err == nil {
			e.RegisterParsedFont(name, f)
		}
	}
	return nil
}

// subDict resolves d[key]. A missing or non-dictionary entry is nil.
func (e *Extractor) subDict(d core.Dict, key string) (core.Dict, error) {
	obj := d.Get(key)
	if obj == nil {
		return nil, nil
	}
	obj, err := resolveIfRef(obj, e.resolver)
	if err != nil {
		return nil, err
	}
	sub, _ := obj.(core.Dict)
	return sub, nil
}

func resolveIfRef(obj core.Object, resolver Resolver) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	if resolver == nil {
		return nil, fmt.Errorf("unresolved reference %s", ref)
	}
	return resolver(ref)
}

// Extract runs ops and returns everything shown since the last call.
func (e *Extractor) Extract(ops []contentstream.Operation) (*TextContent, error) {
	e.items = e.items[:0]
	for i := range ops {
		if err := e.Process(ops[i]); err != nil {
			return nil, fmt.Errorf("op %d %s: %w", i, ops[i].Operator, err)
		}
	}
	return e.Content(), nil
}

func (e *Extractor) ExtractFromBytes(data []byte) (*TextContent, error) {
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil, fmt.Errorf("content stream: %w", err)
	}
	return e.Extract(ops)
}

// Content returns a copy of the items produced so far.
func (e *Extractor) Content() *TextContent {
	return &TextContent{Items: slices.Clone(e.items), Styles: maps.Clone(e.styles)}
}

// Fonts is keyed by resource name without the slash.
func (e *Extractor) Fonts() map[string]*font.Font { return e.fonts }

// Process applies a single operation
func (e *Extractor) Process(op contentstream.Operation) error {
	handled, err := e.interp.Process(op)
	if err != nil || handled {
		return err
	}

	gs := e.interp.State()

	switch op.Operator {
	case "BT":
		gs.BeginText()
	case "ET":
		gs.EndText()
	case "Tf":
		if len(op.Operands) == 2 {
			if name, ok := op.Operands[0].(core.Name); ok {
				if size, ok := graphicsstate.ToFloat(op.Operands[1]); ok {
					fontName := string(name)
					gs.SetFont(fontName, size)
					if _, exists := e.fonts[fontName]; !exists {
						e.RegisterFont(fontName, "Helvetica", "Type1")
					}
				}
			}
		}
	case "Tc":
		if v, ok := singleFloat(op); ok {
			gs.SetCharSpacing(v)
		}
	case "Tw":
		if v, ok := singleFloat(op); ok {
			gs.SetWordSpacing(v)
		}
	case "Tz":
		if v, ok := singleFloat(op); ok {
			gs.SetHorizontalScaling(v)
		}
	case "TL":
		if v, ok := singleFloat(op); ok {
			gs.SetLeading(v)
		}
	case "Tr":
		if v, ok := singleFloat(op); ok {
			gs.SetRenderingMode(int(v))
		}
	case "Ts":
		if v, ok := singleFloat(op); ok {
			gs.SetTextRise(v)
		}

	case "Tm":
		if len(op.Operands) == 6 {
			gs.SetTextMatrix(graphicsstate.OperandsToMatrix(op.Operands))
		}
	case "Td", "TD":
		if len(op.Operands) == 2 {
			tx, _ := graphicsstate.ToFloat(op.Operands[0])
			ty, _ := graphicsstate.ToFloat(op.Operands[1])
			if op.Operator == "TD" {
				gs.TranslateTextSetLeading(tx, ty)
			} else {
				gs.TranslateText(tx, ty)
			}
		}
	case "T*":
		gs.NextLine()

	case "Tj":
		if len(op.Operands) == 1 {
			if str, ok := op.Operands[0].(core.String); ok {
				e.showText([]byte(str))
			}
		}
	case "TJ":
		if len(op.Operands) == 1 {
			if arr, ok := op.Operands[0].(core.Array); ok {
				e.showTextArray(arr)
			}
		}
	case "'":
		gs.NextLine()
		if len(op.Operands) == 1 {
			if str, ok := op.Operands[0].(core.String); ok {
				e.showText([]byte(str))
			}
		}
	case "\"":
		if len(op.Operands) == 3 {
			if ws, ok := graphicsstate.ToFloat(op.Operands[0]); ok {
				gs.SetWordSpacing(ws)
			}
			if cs, ok := graphicsstate.ToFloat(op.Operands[1]); ok {
				gs.SetCharSpacing(cs)
			}
			gs.NextLine()
			if str, ok := op.Operands[2].(core.String); ok {
				e.showText([]byte(str))
			}
		}

	case "BMC", "BDC":
		tag := ""
		if len(op.Operands) > 0 {
			if name, ok := op.Operands[0].(core.Name); ok {
				tag = string(name)
			}
		}
		e.emit(TextItem{Marked: BeginMarked, Tag: tag})
	case "EMC":
		e.emit(TextItem{Marked: EndMarked})

	case "Do":
		if len(op.Operands) == 1 {
			if name, ok := op.Operands[0].(core.Name); ok {
				return e.runForm(string(name))
			}
		}
	}

	return nil
}

func singleFloat(op contentstream.Operation) (float64, bool) {
	if len(op.Operands) != 1 {
		return 0, false
	}
	return graphicsstate.ToFloat(op.Operands[0])
}

func (e *Extractor) emit(item TextItem) {
	e.items = append(e.items, item)
	if e.OnItem != nil {
		e.OnItem(item)
	}
}

func (e *Extractor) currentFont() *font.Font {
	name := e.interp.State().GetFontName()
	if f, ok := e.fonts[name]; ok {
		return f
	}
	f := font.NewFont(name, "Helvetica", "Type1")
	e.fonts[name] = f
	return f
}

// layout decodes a string operand and returns the decoded text and its
// advance in unscaled text space units.
func (e *Extractor) layout(data []byte) (string, float64) {
	ts := e.interp.State().Text
	f := e.currentFont()
	th := ts.HorizontalScaling / 100.0

	var sb strings.Builder
	advance := 0.0
	for _, g := range f.Glyphs(data) {
		sb.WriteString(g.Text)
		w := g.Width/1000.0*ts.FontSize + ts.CharSpacing
		if g.Space {
			w += ts.WordSpacing
		}
		advance += w * th
	}

	return font.NormalizeUnicode(sb.String()), advance
}

// startItem captures the transform and render hints at the current text
// position. advanceScale converts text space advances to user space.
func (e *Extractor) startItem() (TextItem, float64) {
	gs := e.interp.State()
	trm := gs.TextRenderingMatrix()

	item := TextItem{
		Transform:  &trm,
		FontName:   gs.GetFontName(),
		Height:     trm.ScaleY(),
		FillColor:  gs.FillRGBA(),
		RenderMode: gs.Text.RenderingMode,
	}

	return item, gs.Text.TextMatrix.Multiply(gs.CTM).ScaleX()
}

func (e *Extractor) finishItem(item TextItem, str string, advance, advanceScale float64) {
	if str == "" {
		return
	}

	item.Str = str
	item.Width = advance * advanceScale
	item.Dir = DetectDirection(str)
	if e.styles[item.FontName].Vertical {
		item.Dir = TTB
	}

	e.emit(item)
}

// showText handles Tj and the quote operators
func (e *Extractor) showText(data []byte) {
	item, advanceScale := e.startItem()
	str, advance := e.layout(data)
	e.interp.State().Advance(advance)
	e.finishItem(item, str, advance, advanceScale)
}

// showTextArray handles TJ. The whole array becomes one item; large
// negative adjustments between strings become a space.
func (e *Extractor) showTextArray(arr core.Array) {
	gs := e.interp.State()
	item, advanceScale := e.startItem()

	var sb strings.Builder
	total := 0.0
	gap := false

	for _, el := range arr {
		switch v := el.(type) {
		case core.String:
			str, advance := e.layout([]byte(v))
			if gap && str != "" && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(str, " ") {
				sb.WriteByte(' ')
			}
			gap = false
			sb.WriteString(str)
			gs.Advance(advance)
			total += advance
		case core.Int, core.Real:
			n, _ := graphicsstate.ToFloat(v)
			tx := -n / 1000.0 * gs.Text.FontSize * gs.Text.HorizontalScaling / 100.0
			gs.Advance(tx)
			total += tx
			if n < -spaceThreshold && sb.Len() > 0 {
				gap = true
			}
		}
	}

	e.finishItem(item, sb.String(), total, advanceScale)
}

// runForm processes a Form XObject in place: its matrix is concatenated
// onto the CTM and its own fonts shadow the page fonts while it runs.
func (e *Extractor) runForm(name string) error {
	if e.xobjects == nil || e.formDepth >= maxFormDepth {
		return nil
	}

	obj, err := resolveIfRef(e.xobjects.Get(name), e.resolver)
	if err != nil {
		return nil
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil
	}
	switch subtype, _ := stream.Dict.GetName("Subtype"); subtype {
	case "Form":
	case "Image":
		if e.OnImage != nil {
			e.OnImage(stream, e.interp.State().CTM)
		}
		return nil
	default:
		return nil
	}

	data, err := stream.Decoded()
	if err != nil {
		return nil
	}
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil
	}

	gs := e.interp.State()
	gs.Save()

	if arr, ok := stream.Dict.GetArray("Matrix"); ok && len(arr) == 6 {
		gs.Transform(graphicsstate.OperandsToMatrix(arr))
	}

	savedFonts, savedX := e.fonts, e.xobjects
	if res, err := resolveIfRef(stream.Dict.Get("Resources"), e.resolver); err == nil {
		if resources, ok := res.(core.Dict); ok {
			e.fonts = make(map[string]*font.Font, len(savedFonts))
			for k, v := range savedFonts {
				e.fonts[k] = v
			}
			_ = e.RegisterFontsFromResources(resources, e.resolver)
		}
	}

	e.formDepth++
	defer func() {
		e.formDepth--
		e.fonts, e.xobjects = savedFonts, savedX
	}()

	depth := gs.Depth()
	for _, op := range ops {
		if err := e.Process(op); err != nil {
			break
		}
	}

	// Unbalanced q inside the form must not leak out
	for gs.Depth() > depth {
		_ = gs.Restore()
	}
	return gs.Restore()
}

// styleFor derives the text layer style of a font from its base name and
// descriptor.
func styleFor(f *font.Font) TextStyle {
	style := TextStyle{
		FontFamily: DefaultFontFamily,
		Ascent:     0.8,
		Descent:    -0.2,
		Vertical:   f.Vertical(),
	}

	base := strings.ToLower(f.BaseFont)
	if i := strings.IndexByte(base, '+'); i >= 0 {
		base = base[i+1:]
	}

	flags := 0
	if d := f.Descriptor; d != nil {
		flags = d.Flags
		if d.Ascent != 0 {
			style.Ascent = d.Ascent / 1000.0
		}
		if d.Descent != 0 {
			style.Descent = d.Descent / 1000.0
		}
	}

	switch {
	case strings.Contains(base, "courier") || strings.Contains(base, "mono") || flags&font.FlagFixedPitch != 0:
		style.FontFamily = "monospace"
	case strings.Contains(base, "sans") || strings.Contains(base, "helvetica") || strings.Contains(base, "arial"):
		style.FontFamily = "sans-serif"
	case strings.Contains(base, "times") || strings.Contains(base, "serif") ||
		strings.Contains(base, "georgia") || strings.Contains(base, "garamond") || flags&font.FlagSerif != 0:
		style.FontFamily = "serif"
	}

	return style
}
