package xlgraph

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Document is an open .xlsx package: the registry of all its XML parts and
// the package-wide tables that tie them together. A Document is not safe
// for concurrent use.
type Document struct {
	opts    *Options
	logger  *zap.Logger
	archive Archive
	path    string

	parts map[string]*Part
	order []string

	contentTypes  *ContentTypes
	docRels       *Relationships
	wbRels        *Relationships
	sheetRels     map[string]*Relationships
	sharedStrings *SharedStrings
	app           *AppProperties
	core          *CoreProperties
	workbook      *Workbook
	workbookPath  string

	commands *CommandRegistry
	queries  *QueryRegistry
}

func newDocument(opts ...Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Document{
		opts:      o,
		logger:    o.logger,
		archive:   o.newArchive(),
		parts:     make(map[string]*Part),
		sheetRels: make(map[string]*Relationships),
		commands:  NewCommandRegistry(),
		queries:   NewQueryRegistry(),
	}
}

// Open reads the package at path and builds its part graph.
func Open(path string, opts ...Option) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty document path", ErrInput)
	}
	d := newDocument(opts...)
	if err := d.archive.Open(path); err != nil {
		return nil, err
	}
	d.path = path
	if err := d.load(); err != nil {
		d.archive.Close()
		return nil, err
	}
	return d, nil
}

// Create writes a new workbook with a single empty worksheet to path and
// opens it.
func Create(path string, opts ...Option) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty document path", ErrInput)
	}
	d := newDocument(opts...)
	if err := validateSheetName(d.opts.defaultSheetName); err != nil {
		return nil, err
	}
	if err := d.archive.Open(""); err != nil {
		return nil, err
	}
	for _, entry := range emptyPackage(d.opts.defaultSheetName) {
		if err := d.archive.AddEntry(entry[0], entry[1]); err != nil {
			return nil, err
		}
	}
	if err := d.archive.Save(path); err != nil {
		return nil, err
	}
	d.path = path
	if err := d.load(); err != nil {
		d.archive.Close()
		return nil, err
	}
	d.logger.Debug("created document", zap.String("path", path))
	return d, nil
}

// load classifies every declared part and connects the graph.
func (d *Document) load() error {
	ct, err := d.loadPart(contentTypesPath, "", ContentPackageTypes)
	if err != nil {
		return err
	}
	if d.contentTypes, err = newContentTypes(ct); err != nil {
		return err
	}

	docRelsPart, err := d.loadPart(docRelsPath, "", ContentRelationships)
	if err != nil {
		return err
	}
	if d.docRels, err = newRelationships(docRelsPart, ""); err != nil {
		return err
	}

	d.workbookPath = workbookPath
	for _, rel := range d.docRels.Items() {
		if rel.Type == RelationshipWorkbook {
			d.workbookPath = d.docRels.AbsoluteTarget(rel)
			break
		}
	}
	wbRelsPart, err := d.loadPart(relsPathFor(d.workbookPath), "", ContentRelationships)
	if err != nil {
		return err
	}
	if d.wbRels, err = newRelationships(wbRelsPart, d.workbookPath); err != nil {
		return err
	}

	for _, item := range d.contentTypes.Items() {
		if _, ok := d.parts[item.Path]; ok {
			continue
		}
		if !d.archive.HasEntry(item.Path) {
			d.logger.Warn("content type declared for missing entry", zap.String("path", item.Path))
			continue
		}
		if item.Type == ContentUnknown {
			d.logger.Debug("unrecognized content type", zap.String("path", item.Path), zap.String("contentType", item.MIME))
		}
		if item.Type == ContentVBAProject {
			continue // binary part, left untouched in the archive
		}
		relsID := ""
		rels := d.docRels
		if strings.HasPrefix(item.Path, path.Dir(d.workbookPath)+"/") {
			rels = d.wbRels
		}
		if rel, ok := rels.ByTarget("/" + item.Path); ok {
			relsID = rel.ID
		}
		if _, err := d.loadPart(item.Path, relsID, item.Type); err != nil {
			return err
		}
	}

	wbPart, ok := d.parts[d.workbookPath]
	if !ok {
		return fmt.Errorf("%w: package has no workbook part %s", ErrInternal, d.workbookPath)
	}
	d.workbook, err = newWorkbook(d, wbPart)
	if err != nil {
		return err
	}

	if err := d.connectSheets(); err != nil {
		return err
	}

	if len(d.partsOfType(ContentSharedStrings)) == 0 {
		if err := d.ExecCommand(AddSharedStrings{}); err != nil {
			return err
		}
	}
	d.sharedStrings, err = newSharedStrings(d.partsOfType(ContentSharedStrings)[0])
	if err != nil {
		return err
	}

	if parts := d.partsOfType(ContentExtendedProperties); len(parts) > 0 {
		if d.app, err = newAppProperties(parts[0]); err != nil {
			return err
		}
		if err := d.app.ensureSheetLists(d.workbook.sheetTitles()); err != nil {
			return err
		}
	}
	if parts := d.partsOfType(ContentCoreProperties); len(parts) > 0 {
		if d.core, err = newCoreProperties(parts[0]); err != nil {
			return err
		}
	}
	return nil
}

// connectSheets names every sheet part after its workbook entry, hangs it
// under the workbook and attaches the parts its own .rels file references.
func (d *Document) connectSheets() error {
	wb := d.parts[d.workbookPath]
	for _, p := range d.sheetParts() {
		node := d.workbook.sheetNode(p.relsID)
		if node == nil {
			return fmt.Errorf("%w: %s (%s) has no entry in workbook.xml", ErrInternal, p.path, p.relsID)
		}
		p.name = attr(node, "name")
		p.parent = wb.path
		wb.addChild(p.path)

		if !d.archive.HasEntry(relsPathFor(p.path)) {
			continue
		}
		rels, err := d.relationshipsFor(p.path, false)
		if err != nil {
			return err
		}
		for _, rel := range rels.Items() {
			if rel.External {
				continue
			}
			child, ok := d.parts[rels.AbsoluteTarget(rel)]
			if !ok {
				continue
			}
			child.relsID = rel.ID
			child.parent = p.path
			p.addChild(child.path)
			if child.kind == ContentTable {
				root, err := child.root()
				if err != nil {
					return err
				}
				child.name = attr(root, "name")
			}
		}
	}
	for _, p := range d.parts {
		if p.parent == "" && p.kind != ContentPackageTypes && p.kind != ContentRelationships &&
			p.path != d.workbookPath && p.relsID != "" && strings.HasPrefix(p.path, path.Dir(d.workbookPath)+"/") {
			p.parent = wb.path
			wb.addChild(p.path)
		}
	}
	return nil
}

// loadPart registers a part whose content comes from the archive.
func (d *Document) loadPart(partPath, relsID string, kind ContentType) (*Part, error) {
	raw, err := d.archive.GetEntry(partPath)
	if err != nil {
		return nil, err
	}
	p := newPart(partPath, relsID, kind, raw)
	d.addPart(p)
	return p, nil
}

func (d *Document) addPart(p *Part) {
	if _, ok := d.parts[p.path]; !ok {
		d.order = append(d.order, p.path)
	}
	d.parts[p.path] = p
}

// removePart drops a part, its children and its archive entry.
func (d *Document) removePart(partPath string) error {
	p, ok := d.parts[partPath]
	if !ok {
		return nil
	}
	for _, child := range append([]string(nil), p.children...) {
		if err := d.removePart(child); err != nil {
			return err
		}
	}
	if rels := relsPathFor(partPath); d.parts[rels] == nil && d.archive.HasEntry(rels) {
		if err := d.archive.DeleteEntry(rels); err != nil {
			return err
		}
	}
	if parent, ok := d.parts[p.parent]; ok {
		parent.removeChild(p.path)
	}
	delete(d.parts, partPath)
	delete(d.sheetRels, strings.TrimSuffix(strings.Replace(partPath, "_rels/", "", 1), ".rels"))
	for i, pp := range d.order {
		if pp == partPath {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	if p.kind != ContentRelationships && p.kind != ContentPackageTypes {
		d.contentTypes.DeleteOverride(partPath)
	}
	d.logger.Debug("removed part", zap.String("path", partPath))
	if d.archive.HasEntry(partPath) {
		return d.archive.DeleteEntry(partPath)
	}
	return nil
}

// Part returns the part stored at path.
func (d *Document) Part(partPath string) (*Part, error) {
	p, ok := d.parts[strings.TrimPrefix(partPath, "/")]
	if !ok {
		return nil, fmt.Errorf("%w: no part at %q", ErrInternal, partPath)
	}
	return p, nil
}

// PartByName returns the part with the given logical name, or nil.
func (d *Document) PartByName(name string) *Part {
	for _, pp := range d.order {
		if p := d.parts[pp]; p.name == name {
			return p
		}
	}
	return nil
}

// Parts returns all registered parts in registry order.
func (d *Document) Parts() []*Part {
	out := make([]*Part, 0, len(d.order))
	for _, pp := range d.order {
		out = append(out, d.parts[pp])
	}
	return out
}

func (d *Document) partsOfType(kind ContentType) []*Part {
	var out []*Part
	for _, pp := range d.order {
		if p := d.parts[pp]; p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func (d *Document) sheetParts() []*Part {
	var out []*Part
	for _, pp := range d.order {
		if p := d.parts[pp]; p.kind == ContentWorksheet || p.kind == ContentChartsheet {
			out = append(out, p)
		}
	}
	return out
}

// relationshipsFor returns the .rels table of a part, creating an empty one
// when create is set and none exists.
func (d *Document) relationshipsFor(owner string, create bool) (*Relationships, error) {
	if r, ok := d.sheetRels[owner]; ok {
		return r, nil
	}
	relsPath := relsPathFor(owner)
	p, ok := d.parts[relsPath]
	if !ok {
		switch {
		case d.archive.HasEntry(relsPath):
			var err error
			if p, err = d.loadPart(relsPath, "", ContentRelationships); err != nil {
				return nil, err
			}
		case create:
			p = newPart(relsPath, "", ContentRelationships, templateRels)
			d.addPart(p)
			d.logger.Debug("created part", zap.String("path", relsPath))
		default:
			return nil, fmt.Errorf("%w: %s has no relationships part", ErrInternal, owner)
		}
		if ownerPart, ok := d.parts[owner]; ok {
			p.parent = owner
			ownerPart.addChild(relsPath)
		}
	}
	r, err := newRelationships(p, owner)
	if err != nil {
		return nil, err
	}
	d.sheetRels[owner] = r
	return r, nil
}

// availableFileID returns the smallest positive number not used as the
// numeric suffix of an existing part of the given type (sheet3.xml -> 3).
func (d *Document) availableFileID(kind ContentType) (uint64, error) {
	var used []uint64
	for _, p := range d.partsOfType(kind) {
		base := strings.TrimSuffix(path.Base(p.path), path.Ext(p.path))
		i := len(base)
		for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
			i--
		}
		n, err := strconv.ParseUint(base[i:], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot derive a file number from %s", ErrInput, p.path)
		}
		used = append(used, n)
	}
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })
	next := uint64(1)
	for _, n := range used {
		if n == next {
			next++
		} else if n > next {
			break
		}
	}
	return next, nil
}

// Workbook returns the workbook facade.
func (d *Document) Workbook() *Workbook { return d.workbook }

// SharedStrings returns the package-wide shared string table.
func (d *Document) SharedStrings() *SharedStrings { return d.sharedStrings }

// ContentTypes returns the [Content_Types].xml table.
func (d *Document) ContentTypes() *ContentTypes { return d.contentTypes }

// Relationships returns the package-level relationships (_rels/.rels).
func (d *Document) Relationships() *Relationships { return d.docRels }

// WorkbookRelationships returns the workbook relationships.
func (d *Document) WorkbookRelationships() *Relationships { return d.wbRels }

// AppProperties returns docProps/app.xml, or nil if the package has none.
func (d *Document) AppProperties() *AppProperties { return d.app }

// CoreProperties returns docProps/core.xml, or nil if the package has none.
func (d *Document) CoreProperties() *CoreProperties { return d.core }

// Path returns the path the document was opened from or last saved to.
func (d *Document) Path() string { return d.path }

// Save writes the document back to the path it was opened from.
func (d *Document) Save() error { return d.SaveAs(d.path) }

// SaveAs writes the document to path. The calculation chain is dropped
// first so Excel rebuilds it. A failed save leaves the file in an
// undefined state.
func (d *Document) SaveAs(path string) error {
	if !d.archive.IsOpen() {
		return fmt.Errorf("%w: document is closed", ErrInput)
	}
	if err := d.ExecCommand(ResetCalcChain{}); err != nil {
		return err
	}
	if d.opts.recalculateOnOpen {
		d.workbook.SetFullCalculationOnLoad()
	}
	for _, p := range d.partsOfType(ContentWorksheet) {
		if p.doc != nil {
			updateDimension(p.doc.Root())
		}
	}
	for _, pp := range d.order {
		xml, err := d.parts[pp].XML()
		if err != nil {
			return err
		}
		if err := d.archive.AddEntry(pp, xml); err != nil {
			return err
		}
	}
	if err := d.archive.Save(path); err != nil {
		return err
	}
	if path != "" {
		d.path = path
	}
	return nil
}

// Close releases the archive. The document cannot be used afterwards.
func (d *Document) Close() error {
	if d.archive == nil || !d.archive.IsOpen() {
		return nil
	}
	d.parts = make(map[string]*Part)
	d.order = nil
	d.sheetRels = make(map[string]*Relationships)
	return d.archive.Close()
}
