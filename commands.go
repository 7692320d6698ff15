package xlgraph

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Command is a mutation request handled by the document. Sheets and tables
// never edit workbook.xml, app.xml, relationships or content types
// themselves; they describe the change as a Command instead.
type Command interface {
	Name() string
}

// SetSheetName renames a sheet. SheetID is the sheet's workbook relationship id.
type SetSheetName struct {
	SheetID string
	OldName string
	NewName string
}

// SetSheetVisibility changes the state of a sheet.
type SetSheetVisibility struct {
	SheetID    string
	Visibility SheetVisibility
}

// SetSheetIndex moves a sheet to a 1-based tab position.
type SetSheetIndex struct {
	SheetID string
	Index   int
}

// SetSheetActive makes a sheet the active tab.
type SetSheetActive struct {
	SheetID string
}

// ResetCalcChain removes the calculation chain part.
type ResetCalcChain struct{}

// AddSharedStrings creates the shared strings part if the package lacks one.
type AddSharedStrings struct{}

// AddWorksheet appends an empty worksheet.
type AddWorksheet struct {
	SheetName string
}

// AddChartsheet appends an empty chartsheet.
type AddChartsheet struct {
	SheetName string
}

// AddTable creates a table over Ref on a worksheet.
type AddTable struct {
	SheetID   string
	TableName string
	Ref       string
}

// DeleteSheet removes a sheet and every part it owns.
type DeleteSheet struct {
	SheetID string
}

// CloneSheet copies a worksheet under a new name.
type CloneSheet struct {
	SheetID string
	NewName string
}

func (SetSheetName) Name() string       { return "setSheetName" }
func (SetSheetVisibility) Name() string { return "setSheetVisibility" }
func (SetSheetIndex) Name() string      { return "setSheetIndex" }
func (SetSheetActive) Name() string     { return "setSheetActive" }
func (ResetCalcChain) Name() string     { return "resetCalcChain" }
func (AddSharedStrings) Name() string   { return "addSharedStrings" }
func (AddWorksheet) Name() string       { return "addWorksheet" }
func (AddChartsheet) Name() string      { return "addChartsheet" }
func (AddTable) Name() string           { return "addTable" }
func (DeleteSheet) Name() string        { return "deleteSheet" }
func (CloneSheet) Name() string         { return "cloneSheet" }

// CommandHandler applies one kind of command to a document.
type CommandHandler func(d *Document, cmd Command) error

// CommandRegistry maps command names to their handlers.
type CommandRegistry struct {
	handlers map[string]CommandHandler
}

// NewCommandRegistry creates a registry with the built-in commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{handlers: make(map[string]CommandHandler)}
	r.Register("setSheetName", handle((*Document).setSheetName))
	r.Register("setSheetVisibility", handle((*Document).setSheetVisibility))
	r.Register("setSheetIndex", handle((*Document).setSheetIndex))
	r.Register("setSheetActive", handle((*Document).setSheetActive))
	r.Register("resetCalcChain", handle((*Document).resetCalcChain))
	r.Register("addSharedStrings", handle((*Document).addSharedStrings))
	r.Register("addWorksheet", handle((*Document).addWorksheet))
	r.Register("addChartsheet", handle((*Document).addChartsheet))
	r.Register("addTable", handle((*Document).addTable))
	r.Register("deleteSheet", handle((*Document).deleteSheet))
	r.Register("cloneSheet", handle((*Document).cloneSheet))
	return r
}

// Register adds or replaces a command handler.
func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.handlers[name] = handler
}

func handle[C Command](fn func(*Document, C) error) CommandHandler {
	return func(d *Document, cmd Command) error {
		c, ok := cmd.(C)
		if !ok {
			return fmt.Errorf("%w: command %s has unexpected type %T", ErrInternal, cmd.Name(), cmd)
		}
		return fn(d, c)
	}
}

// ExecCommand performs a command. Every part a command touches is resolved
// before any of them is modified, so a failing command changes nothing.
func (d *Document) ExecCommand(cmd Command) error {
	h, ok := d.commands.handlers[cmd.Name()]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrInternal, cmd.Name())
	}
	if err := h(d, cmd); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}

// resolveSheet finds the workbook entry and part of a sheet.
func (d *Document) resolveSheet(sheetID string) (*etree.Element, *Part, error) {
	node := d.workbook.sheetNode(sheetID)
	if node == nil {
		return nil, nil, fmt.Errorf("%w: workbook.xml has no sheet with r:id %q", ErrInternal, sheetID)
	}
	rel, ok := d.wbRels.ByID(sheetID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: workbook relationships have no id %q", ErrInternal, sheetID)
	}
	p, err := d.Part(d.wbRels.AbsoluteTarget(rel))
	if err != nil {
		return nil, nil, err
	}
	return node, p, nil
}

func (d *Document) syncAppProperties() {
	if d.app != nil {
		d.app.syncSheets(d.workbook.sheetTitles())
	}
}

func (d *Document) setSheetName(c SetSheetName) error {
	node, part, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	oldName := attr(node, "name")
	if c.OldName != "" && c.OldName != oldName {
		return fmt.Errorf("%w: sheet %s is named %q, not %q", ErrInternal, c.SheetID, oldName, c.OldName)
	}
	if c.NewName == oldName {
		return nil
	}
	if err := validateSheetName(c.NewName); err != nil {
		return err
	}
	for _, el := range d.workbook.sheetElements() {
		if el != node && strings.EqualFold(attr(el, "name"), c.NewName) {
			return fmt.Errorf("%w: a sheet named %q already exists", ErrInput, attr(el, "name"))
		}
	}
	var title *etree.Element
	if d.app != nil {
		if title = d.app.titleNode(oldName); title == nil {
			return fmt.Errorf("%w: app properties list no sheet %q", ErrInternal, oldName)
		}
	}
	worksheets := d.partsOfType(ContentWorksheet)
	for _, ws := range worksheets {
		if _, err := ws.root(); err != nil {
			return err
		}
	}

	node.CreateAttr("name", c.NewName)
	if title != nil {
		title.SetText(c.NewName)
	}
	part.name = c.NewName
	d.workbook.renameSheetReferences(oldName, c.NewName)
	for _, ws := range worksheets {
		root, _ := ws.root()
		for _, f := range root.FindElements("./sheetData/row/c/f") {
			if text := f.Text(); text != "" {
				f.SetText(renameSheetInFormula(text, oldName, c.NewName))
			}
		}
	}
	return nil
}

func (d *Document) setSheetVisibility(c SetSheetVisibility) error {
	node, part, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	current := parseSheetVisibility(attr(node, "state"))
	if current == c.Visibility {
		return nil
	}
	pos := d.workbook.sheetPosition(c.SheetID)
	newActive := -1
	if c.Visibility != SheetVisible {
		if current == SheetVisible && d.workbook.visibleCount() == 1 {
			return fmt.Errorf("%w: cannot hide %q, at least one sheet must stay visible", ErrInput, attr(node, "name"))
		}
		if d.workbook.activeTab() == pos {
			newActive = d.workbook.firstVisibleFrom(pos+1, pos)
		}
	}
	var activePart *Part
	if newActive >= 0 {
		if _, activePart, err = d.resolveSheet(attr(d.workbook.sheetElements()[newActive], "r:id")); err != nil {
			return err
		}
	}

	if c.Visibility == SheetVisible {
		node.RemoveAttr("state")
	} else {
		node.CreateAttr("state", c.Visibility.String())
	}
	if activePart != nil {
		d.workbook.setActiveTab(newActive)
		if err := setSheetSelected(part, false); err != nil {
			return err
		}
		return setSheetSelected(activePart, true)
	}
	return nil
}

func (d *Document) setSheetIndex(c SetSheetIndex) error {
	node, _, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	sheets := d.workbook.sheetElements()
	if c.Index < 1 || c.Index > len(sheets) {
		return fmt.Errorf("%w: sheet index %d out of range 1..%d", ErrInput, c.Index, len(sheets))
	}
	from, to := d.workbook.sheetPosition(c.SheetID), c.Index-1
	if from == to {
		return nil
	}
	oldOrder := make([]string, len(sheets))
	for i, el := range sheets {
		oldOrder[i] = attr(el, "r:id")
	}
	activeID := oldOrder[min(d.workbook.activeTab(), len(sheets)-1)]

	sheetsEl := node.Parent()
	removeElement(node)
	remaining := sheetsEl.SelectElements("sheet")
	if to >= len(remaining) {
		appendElement(sheetsEl, node)
	} else {
		insertBefore(remaining[to], node)
	}

	newPos := make(map[string]int, len(sheets))
	for i, el := range d.workbook.sheetElements() {
		newPos[attr(el, "r:id")] = i
	}
	d.workbook.remapLocalSheetIDs(func(old int) int {
		if old >= len(oldOrder) {
			return old
		}
		return newPos[oldOrder[old]]
	})
	d.workbook.setActiveTab(newPos[activeID])
	d.syncAppProperties()
	return nil
}

func (d *Document) setSheetActive(c SetSheetActive) error {
	node, part, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	if parseSheetVisibility(attr(node, "state")) != SheetVisible {
		return fmt.Errorf("%w: hidden sheet %q cannot be made active", ErrInput, attr(node, "name"))
	}
	sheetParts := d.sheetParts()
	for _, p := range sheetParts {
		if _, err := p.root(); err != nil {
			return err
		}
	}
	d.workbook.setActiveTab(d.workbook.sheetPosition(c.SheetID))
	for _, p := range sheetParts {
		if err := setSheetSelected(p, p == part); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) resetCalcChain(ResetCalcChain) error {
	for _, p := range d.partsOfType(ContentCalculationChain) {
		if rel, ok := d.wbRels.ByTarget("/" + p.path); ok {
			d.wbRels.Delete(rel.ID)
		}
		if err := d.removePart(p.path); err != nil {
			return err
		}
		d.logger.Debug("reset calculation chain", zap.String("path", p.path))
	}
	return nil
}

func (d *Document) addSharedStrings(AddSharedStrings) error {
	if len(d.partsOfType(ContentSharedStrings)) > 0 {
		return nil
	}
	ssPath := path.Join(path.Dir(d.workbookPath), "sharedStrings.xml")
	rel, err := d.wbRels.Add(RelationshipSharedStrings, relativeTarget(d.workbookPath, ssPath))
	if err != nil {
		return err
	}
	if err := d.contentTypes.AddOverride(ssPath, ContentSharedStrings); err != nil {
		return err
	}
	p := newPart(ssPath, rel.ID, ContentSharedStrings, templateSharedStrings)
	p.parent = d.workbookPath
	d.addPart(p)
	d.parts[d.workbookPath].addChild(ssPath)
	d.logger.Debug("created part", zap.String("path", ssPath))
	return nil
}

func (d *Document) addWorksheet(c AddWorksheet) error {
	_, err := d.addSheet(c.SheetName, ContentWorksheet, templateWorksheet)
	return err
}

func (d *Document) addChartsheet(c AddChartsheet) error {
	_, err := d.addSheet(c.SheetName, ContentChartsheet, templateChartsheet)
	return err
}

// addSheet registers a new sheet part with the given content and links it
// into the workbook, its relationships, content types and app properties.
func (d *Document) addSheet(name string, kind ContentType, content string) (*Part, error) {
	if err := d.workbook.checkNewSheetName(name); err != nil {
		return nil, err
	}
	id, err := d.availableFileID(kind)
	if err != nil {
		return nil, err
	}
	folder, relType := "worksheets", RelationshipWorksheet
	if kind == ContentChartsheet {
		folder, relType = "chartsheets", RelationshipChartsheet
	}
	sheetPath := path.Join(path.Dir(d.workbookPath), folder, fmt.Sprintf("sheet%d.xml", id))

	rel, err := d.wbRels.Add(relType, relativeTarget(d.workbookPath, sheetPath))
	if err != nil {
		return nil, err
	}
	if err := d.contentTypes.AddOverride(sheetPath, kind); err != nil {
		return nil, err
	}
	p := newPart(sheetPath, rel.ID, kind, content)
	p.name = name
	p.parent = d.workbookPath
	d.addPart(p)
	d.parts[d.workbookPath].addChild(sheetPath)

	node := etree.NewElement("sheet")
	node.CreateAttr("name", name)
	setAttrUint(node, "sheetId", d.workbook.nextSheetID())
	node.CreateAttr("r:id", rel.ID)
	appendElement(d.workbook.rootElement().SelectElement("sheets"), node)

	d.syncAppProperties()
	d.logger.Debug("created part", zap.String("path", sheetPath), zap.String("sheet", name))
	return p, nil
}

func (d *Document) deleteSheet(c DeleteSheet) error {
	node, part, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	name := attr(node, "name")
	if part.kind == ContentWorksheet && d.workbook.WorksheetCount() == 1 {
		return fmt.Errorf("%w: cannot delete %q, a workbook needs at least one worksheet", ErrInput, name)
	}
	if parseSheetVisibility(attr(node, "state")) == SheetVisible && d.workbook.visibleCount() == 1 {
		return fmt.Errorf("%w: cannot delete %q, it is the only visible sheet", ErrInput, name)
	}
	pos := d.workbook.sheetPosition(c.SheetID)
	wasSelected := false
	if root, err := part.root(); err == nil {
		wasSelected = isSheetSelected(root)
	}

	d.workbook.remapLocalSheetIDs(func(old int) int {
		switch {
		case old == pos:
			return -1
		case old > pos:
			return old - 1
		}
		return old
	})
	removeElement(node)
	d.wbRels.Delete(c.SheetID)
	if err := d.removePart(part.path); err != nil {
		return err
	}

	sheets := d.workbook.sheetElements()
	active := d.workbook.activeTab()
	if active > pos {
		active--
	}
	active = min(active, len(sheets)-1)
	if parseSheetVisibility(attr(sheets[active], "state")) != SheetVisible {
		active = d.workbook.firstVisibleFrom(active, -1)
	}
	d.workbook.setActiveTab(active)
	if wasSelected {
		if _, activePart, err := d.resolveSheet(attr(sheets[active], "r:id")); err == nil {
			if err := setSheetSelected(activePart, true); err != nil {
				return err
			}
		}
	}
	d.syncAppProperties()
	return nil
}

// cloneStrippedElements reference parts that a copy cannot share.
var cloneStrippedElements = []string{
	"tableParts", "drawing", "legacyDrawing", "legacyDrawingHF", "picture", "oleObjects", "controls",
}

func (d *Document) cloneSheet(c CloneSheet) error {
	_, src, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	if src.kind != ContentWorksheet {
		return fmt.Errorf("%w: only worksheets can be cloned", ErrInput)
	}
	content, err := src.XML()
	if err != nil {
		return err
	}
	var srcRels *Relationships
	if d.archive.HasEntry(relsPathFor(src.path)) || d.parts[relsPathFor(src.path)] != nil {
		if srcRels, err = d.relationshipsFor(src.path, false); err != nil {
			return err
		}
	}

	p, err := d.addSheet(c.NewName, ContentWorksheet, content)
	if err != nil {
		return err
	}
	root, err := p.root()
	if err != nil {
		return err
	}
	for _, tag := range cloneStrippedElements {
		if el := root.SelectElement(tag); el != nil {
			removeElement(el)
		}
	}
	if views := root.SelectElement("sheetViews"); views != nil {
		for _, v := range views.SelectElements("sheetView") {
			v.RemoveAttr("tabSelected")
		}
	}
	if links := root.SelectElement("hyperlinks"); links != nil {
		for _, link := range links.SelectElements("hyperlink") {
			id := attr(link, "r:id")
			if id == "" {
				continue
			}
			link.RemoveAttr("r:id")
			if srcRels == nil {
				continue
			}
			if rel, ok := srcRels.ByID(id); ok && rel.Type == RelationshipHyperlink {
				rels, err := d.relationshipsFor(p.path, true)
				if err != nil {
					return err
				}
				added, err := rels.Add(RelationshipHyperlink, rel.Target)
				if err != nil {
					return err
				}
				link.CreateAttr("r:id", added.ID)
			}
		}
	}
	return nil
}

// validateTableName applies Excel's table naming rules.
func validateTableName(name string) error {
	if name == "" || len(name) > 255 {
		return fmt.Errorf("%w: table name must be 1..255 characters", ErrInput)
	}
	for i, r := range name {
		letter := r == '_' || r == '\\' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127
		if i == 0 && !letter {
			return fmt.Errorf("%w: table name %q must start with a letter, underscore or backslash", ErrInput, name)
		}
		if !letter && r != '.' && !(r >= '0' && r <= '9') {
			return fmt.Errorf("%w: table name %q contains %q", ErrInput, name, r)
		}
	}
	if _, err := ParseCellReference(strings.ToUpper(name)); err == nil {
		return fmt.Errorf("%w: table name %q looks like a cell reference", ErrInput, name)
	}
	upper := strings.ToUpper(name)
	if upper == "R" || upper == "C" {
		return fmt.Errorf("%w: table name %q is reserved", ErrInput, name)
	}
	return nil
}

func (d *Document) addTable(c AddTable) error {
	_, sheet, err := d.resolveSheet(c.SheetID)
	if err != nil {
		return err
	}
	if sheet.kind != ContentWorksheet {
		return fmt.Errorf("%w: tables can only be added to worksheets", ErrInput)
	}
	if err := validateTableName(c.TableName); err != nil {
		return err
	}
	for _, t := range d.partsOfType(ContentTable) {
		if strings.EqualFold(t.name, c.TableName) {
			return fmt.Errorf("%w: a table named %q already exists", ErrInput, t.name)
		}
	}
	for _, dn := range d.workbook.DefinedNames() {
		if strings.EqualFold(dn.Name, c.TableName) {
			return fmt.Errorf("%w: %q is already a defined name", ErrInput, dn.Name)
		}
	}
	rng, err := ParseRange(c.Ref)
	if err != nil {
		return err
	}
	if rng.NumRows() < 2 {
		return fmt.Errorf("%w: table range %s needs a header row and at least one data row", ErrInput, rng)
	}
	sheetRoot, err := sheet.root()
	if err != nil {
		return err
	}
	var tableIDs uint64
	for _, t := range d.partsOfType(ContentTable) {
		troot, err := t.root()
		if err != nil {
			return err
		}
		if id := attrUint(troot, "id", 0); id > tableIDs {
			tableIDs = id
		}
		if t.parent != sheet.path {
			continue
		}
		other, err := ParseRange(attr(troot, "ref"))
		if err == nil && other.Overlaps(rng) {
			return fmt.Errorf("%w: range %s overlaps table %q (%s)", ErrInput, rng, t.name, other)
		}
	}
	for _, m := range mergeRanges(sheetRoot) {
		if m.Overlaps(rng) {
			return fmt.Errorf("%w: range %s overlaps merged cells %s", ErrInput, rng, m)
		}
	}
	fileID, err := d.availableFileID(ContentTable)
	if err != nil {
		return err
	}
	tablePath := path.Join(path.Dir(d.workbookPath), "tables", fmt.Sprintf("table%d.xml", fileID))
	rels, err := d.relationshipsFor(sheet.path, true)
	if err != nil {
		return err
	}
	if _, err := rels.NewID(); err != nil {
		return err
	}

	headers, err := d.tableHeaders(sheetRoot, rng)
	if err != nil {
		return err
	}
	rel, err := rels.Add(RelationshipTable, relativeTarget(sheet.path, tablePath))
	if err != nil {
		return err
	}
	if err := d.contentTypes.AddOverride(tablePath, ContentTable); err != nil {
		return err
	}
	p := newPart(tablePath, rel.ID, ContentTable, tableXML(tableIDs+1, c.TableName, rng.String()))
	p.name = c.TableName
	p.parent = sheet.path
	d.addPart(p)
	sheet.addChild(tablePath)

	troot, err := p.root()
	if err != nil {
		return err
	}
	cols := troot.SelectElement("tableColumns")
	for i, h := range headers {
		col := cols.CreateElement("tableColumn")
		setAttrUint(col, "id", uint64(i+1))
		col.CreateAttr("name", h)
	}
	setAttrUint(cols, "count", uint64(len(headers)))

	tableParts := childOrCreate(sheetRoot, "tableParts", worksheetOrder)
	tablePart := etree.NewElement("tablePart")
	tablePart.CreateAttr("r:id", rel.ID)
	appendElement(tableParts, tablePart)
	setAttrUint(tableParts, "count", uint64(len(tableParts.SelectElements("tablePart"))))
	d.logger.Debug("created part", zap.String("path", tablePath), zap.String("table", c.TableName))
	return nil
}

// tableHeaders reads the header row of rng, inventing "ColumnN" names for
// empty cells, making duplicates unique and writing the final names back
// into the sheet.
func (d *Document) tableHeaders(sheetRoot *etree.Element, rng RangeRef) ([]string, error) {
	sheetData := childOrCreate(sheetRoot, "sheetData", worksheetOrder)
	row := rng.TopLeft.row
	seen := make(map[string]bool)
	var names []string
	for col := rng.TopLeft.column; col <= rng.BottomRight.column; col++ {
		name := ""
		if c := findCell(sheetData, row, col); c != nil {
			name = strings.TrimSpace(d.cellDisplayText(c))
		}
		if name == "" {
			name = fmt.Sprintf("Column%d", col-rng.TopLeft.column+1)
		}
		base, n := name, 2
		for seen[strings.ToLower(name)] {
			name = fmt.Sprintf("%s%d", base, n)
			n++
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)

		cell := locateOrCreateCell(locateOrCreateRow(sheetData, row), row, col)
		if d.cellDisplayText(cell) != name {
			if err := d.writeCellString(cell, name); err != nil {
				return nil, err
			}
		}
	}
	return names, nil
}
