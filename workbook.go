package xlgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// SheetVisibility is the state attribute of a workbook sheet entry.
type SheetVisibility int

const (
	SheetVisible SheetVisibility = iota
	SheetHidden
	SheetVeryHidden
)

func (v SheetVisibility) String() string {
	switch v {
	case SheetHidden:
		return "hidden"
	case SheetVeryHidden:
		return "veryHidden"
	}
	return "visible"
}

func parseSheetVisibility(s string) SheetVisibility {
	switch s {
	case "hidden":
		return SheetHidden
	case "veryHidden":
		return SheetVeryHidden
	}
	return SheetVisible
}

var workbookOrder = []string{
	"fileVersion", "fileSharing", "workbookPr", "workbookProtection", "bookViews",
	"sheets", "functionGroups", "externalReferences", "definedNames", "calcPr",
	"oleSize", "customWorkbookViews", "pivotCaches", "smartTagPr", "smartTagTypes",
	"webPublishing", "fileRecoveryPr", "webPublishObjects", "extLst",
}

// Workbook is the facade over xl/workbook.xml. Operations that affect more
// than the workbook part are sent to the document as commands.
type Workbook struct {
	doc  *Document
	part *Part
}

func newWorkbook(d *Document, p *Part) (*Workbook, error) {
	root, err := p.root()
	if err != nil {
		return nil, err
	}
	if root.SelectElement("sheets") == nil {
		return nil, fmt.Errorf("%w: %s has no <sheets> element", ErrInternal, p.path)
	}
	return &Workbook{doc: d, part: p}, nil
}

func (w *Workbook) rootElement() *etree.Element {
	root, _ := w.part.root()
	return root
}

func (w *Workbook) sheetElements() []*etree.Element {
	return w.rootElement().SelectElement("sheets").SelectElements("sheet")
}

func (w *Workbook) sheetNode(relsID string) *etree.Element {
	for _, el := range w.sheetElements() {
		if attr(el, "r:id") == relsID {
			return el
		}
	}
	return nil
}

func (w *Workbook) sheetNodeByName(name string) *etree.Element {
	for _, el := range w.sheetElements() {
		if attr(el, "name") == name {
			return el
		}
	}
	return nil
}

// sheetPosition returns the 0-based position of a sheet entry, or -1.
func (w *Workbook) sheetPosition(relsID string) int {
	for i, el := range w.sheetElements() {
		if attr(el, "r:id") == relsID {
			return i
		}
	}
	return -1
}

func (w *Workbook) sheetKind(node *etree.Element) ContentType {
	rel, ok := w.doc.wbRels.ByID(attr(node, "r:id"))
	if !ok {
		return ContentUnknown
	}
	switch rel.Type {
	case RelationshipWorksheet:
		return ContentWorksheet
	case RelationshipChartsheet:
		return ContentChartsheet
	}
	return ContentUnknown
}

// sheetTitles lists worksheet and chartsheet names in workbook order.
func (w *Workbook) sheetTitles() (worksheets, chartsheets []string) {
	for _, el := range w.sheetElements() {
		switch w.sheetKind(el) {
		case ContentWorksheet:
			worksheets = append(worksheets, attr(el, "name"))
		case ContentChartsheet:
			chartsheets = append(chartsheets, attr(el, "name"))
		}
	}
	return worksheets, chartsheets
}

func (w *Workbook) workbookView() *etree.Element {
	views := childOrCreate(w.rootElement(), "bookViews", workbookOrder)
	view := views.SelectElement("workbookView")
	if view == nil {
		view = views.CreateElement("workbookView")
	}
	return view
}

// activeTab returns the 0-based index of the active sheet.
func (w *Workbook) activeTab() int {
	views := w.rootElement().SelectElement("bookViews")
	if views == nil || views.SelectElement("workbookView") == nil {
		return 0
	}
	return int(attrUint(views.SelectElement("workbookView"), "activeTab", 0))
}

func (w *Workbook) setActiveTab(i int) {
	setAttrUint(w.workbookView(), "activeTab", uint64(i))
}

func (w *Workbook) visibleCount() int {
	n := 0
	for _, el := range w.sheetElements() {
		if parseSheetVisibility(attr(el, "state")) == SheetVisible {
			n++
		}
	}
	return n
}

// firstVisibleFrom returns the first visible sheet position at or after
// start, wrapping around; -1 if none.
func (w *Workbook) firstVisibleFrom(start int, skip int) int {
	sheets := w.sheetElements()
	for k := 0; k < len(sheets); k++ {
		i := (start + k) % len(sheets)
		if i != skip && parseSheetVisibility(attr(sheets[i], "state")) == SheetVisible {
			return i
		}
	}
	return -1
}

func (w *Workbook) nextSheetID() uint64 {
	var max uint64
	for _, el := range w.sheetElements() {
		if id := attrUint(el, "sheetId", 0); id > max {
			max = id
		}
	}
	return max + 1
}

// SheetCount returns the number of sheets of all kinds.
func (w *Workbook) SheetCount() int { return len(w.sheetElements()) }

// WorksheetCount returns the number of worksheets.
func (w *Workbook) WorksheetCount() int {
	ws, _ := w.sheetTitles()
	return len(ws)
}

// ChartsheetCount returns the number of chartsheets.
func (w *Workbook) ChartsheetCount() int {
	_, cs := w.sheetTitles()
	return len(cs)
}

// SheetNames returns all sheet names in tab order.
func (w *Workbook) SheetNames() []string {
	var names []string
	for _, el := range w.sheetElements() {
		names = append(names, attr(el, "name"))
	}
	return names
}

// WorksheetNames returns worksheet names in tab order.
func (w *Workbook) WorksheetNames() []string {
	ws, _ := w.sheetTitles()
	return ws
}

// ChartsheetNames returns chartsheet names in tab order.
func (w *Workbook) ChartsheetNames() []string {
	_, cs := w.sheetTitles()
	return cs
}

// SheetExists reports whether a sheet of any kind has the given name.
func (w *Workbook) SheetExists(name string) bool { return w.sheetNodeByName(name) != nil }

// WorksheetExists reports whether a worksheet has the given name.
func (w *Workbook) WorksheetExists(name string) bool {
	node := w.sheetNodeByName(name)
	return node != nil && w.sheetKind(node) == ContentWorksheet
}

// ChartsheetExists reports whether a chartsheet has the given name.
func (w *Workbook) ChartsheetExists(name string) bool {
	node := w.sheetNodeByName(name)
	return node != nil && w.sheetKind(node) == ContentChartsheet
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	q := &QuerySheetFromName{SheetName: name}
	if err := w.doc.ExecQuery(q); err != nil {
		return nil, err
	}
	return newSheet(w.doc, q.Part)
}

// SheetAt returns the sheet at the 1-based tab position.
func (w *Workbook) SheetAt(index int) (*Sheet, error) {
	sheets := w.sheetElements()
	if index < 1 || index > len(sheets) {
		return nil, fmt.Errorf("%w: sheet index %d out of range 1..%d", ErrInput, index, len(sheets))
	}
	return w.Sheet(attr(sheets[index-1], "name"))
}

// Worksheet returns the worksheet with the given name.
func (w *Workbook) Worksheet(name string) (*Worksheet, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, err
	}
	return s.Worksheet()
}

// Chartsheet returns the chartsheet with the given name.
func (w *Workbook) Chartsheet(name string) (*Chartsheet, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, err
	}
	return s.Chartsheet()
}

// ActiveSheet returns the sheet shown when the file is opened.
func (w *Workbook) ActiveSheet() (*Sheet, error) {
	return w.SheetAt(w.activeTab() + 1)
}

// IndexOfSheet returns the 1-based tab position of a sheet.
func (w *Workbook) IndexOfSheet(name string) (int, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return 0, err
	}
	return s.Index()
}

// TypeOfSheet returns ContentWorksheet or ContentChartsheet.
func (w *Workbook) TypeOfSheet(name string) (ContentType, error) {
	node := w.sheetNodeByName(name)
	if node == nil {
		return ContentUnknown, fmt.Errorf("%w: no sheet named %q", ErrInput, name)
	}
	q := &QuerySheetType{SheetID: attr(node, "r:id")}
	if err := w.doc.ExecQuery(q); err != nil {
		return ContentUnknown, err
	}
	return q.Type, nil
}

// AddWorksheet appends a new empty worksheet.
func (w *Workbook) AddWorksheet(name string) (*Worksheet, error) {
	if err := w.doc.ExecCommand(AddWorksheet{SheetName: name}); err != nil {
		return nil, err
	}
	return w.Worksheet(name)
}

// AddChartsheet appends a new chartsheet without chart content.
func (w *Workbook) AddChartsheet(name string) (*Chartsheet, error) {
	if err := w.doc.ExecCommand(AddChartsheet{SheetName: name}); err != nil {
		return nil, err
	}
	return w.Chartsheet(name)
}

// DeleteSheet removes a sheet together with its relationships, tables
// and property entries.
func (w *Workbook) DeleteSheet(name string) error {
	node := w.sheetNodeByName(name)
	if node == nil {
		return fmt.Errorf("%w: no sheet named %q", ErrInput, name)
	}
	return w.doc.ExecCommand(DeleteSheet{SheetID: attr(node, "r:id")})
}

// CloneSheet copies an existing worksheet under a new name.
func (w *Workbook) CloneSheet(existing, newName string) error {
	node := w.sheetNodeByName(existing)
	if node == nil {
		return fmt.Errorf("%w: no sheet named %q", ErrInput, existing)
	}
	return w.doc.ExecCommand(CloneSheet{SheetID: attr(node, "r:id"), NewName: newName})
}

// SetSheetIndex moves a sheet to the 1-based tab position index.
func (w *Workbook) SetSheetIndex(name string, index int) error {
	node := w.sheetNodeByName(name)
	if node == nil {
		return fmt.Errorf("%w: no sheet named %q", ErrInput, name)
	}
	return w.doc.ExecCommand(SetSheetIndex{SheetID: attr(node, "r:id"), Index: index})
}

// Table returns the table with the given name from any worksheet.
func (w *Workbook) Table(name string) (*Table, error) {
	q := &QueryTableFromName{TableName: name}
	if err := w.doc.ExecQuery(q); err != nil {
		return nil, err
	}
	return newTable(w.doc, q.Part)
}

// TableNames returns the names of all tables in the workbook.
func (w *Workbook) TableNames() []string {
	var names []string
	for _, p := range w.doc.partsOfType(ContentTable) {
		names = append(names, p.name)
	}
	return names
}

// SetFullCalculationOnLoad makes Excel recalculate every formula on open.
func (w *Workbook) SetFullCalculationOnLoad() {
	calc := childOrCreate(w.rootElement(), "calcPr", workbookOrder)
	calc.CreateAttr("fullCalcOnLoad", "1")
}

// DefinedName is a workbook or sheet scoped name.
type DefinedName struct {
	Name         string
	Value        string
	LocalSheetID int // 0-based sheet position, -1 for workbook scope
	Hidden       bool
}

// DefinedNames returns all defined names in document order.
func (w *Workbook) DefinedNames() []DefinedName {
	dn := w.rootElement().SelectElement("definedNames")
	if dn == nil {
		return nil
	}
	var out []DefinedName
	for _, el := range dn.SelectElements("definedName") {
		out = append(out, toDefinedName(el))
	}
	return out
}

func toDefinedName(el *etree.Element) DefinedName {
	local := -1
	if a := el.SelectAttr("localSheetId"); a != nil {
		if n, err := strconv.Atoi(a.Value); err == nil {
			local = n
		}
	}
	return DefinedName{
		Name:         attr(el, "name"),
		Value:        el.Text(),
		LocalSheetID: local,
		Hidden:       attrBool(el, "hidden", false),
	}
}

// AddDefinedName adds a name; localSheetID -1 gives it workbook scope.
func (w *Workbook) AddDefinedName(name, value string, localSheetID int) error {
	if name == "" || value == "" {
		return fmt.Errorf("%w: defined name and value must not be empty", ErrInput)
	}
	if localSheetID >= w.SheetCount() || localSheetID < -1 {
		return fmt.Errorf("%w: localSheetId %d out of range", ErrInput, localSheetID)
	}
	for _, dn := range w.DefinedNames() {
		if strings.EqualFold(dn.Name, name) && dn.LocalSheetID == localSheetID {
			return fmt.Errorf("%w: defined name %q already exists in that scope", ErrInput, name)
		}
	}
	el := etree.NewElement("definedName")
	el.CreateAttr("name", name)
	if localSheetID >= 0 {
		setAttrUint(el, "localSheetId", uint64(localSheetID))
	}
	el.SetText(value)
	appendElement(childOrCreate(w.rootElement(), "definedNames", workbookOrder), el)
	return nil
}

// DeleteDefinedName removes a defined name from the given scope.
func (w *Workbook) DeleteDefinedName(name string, localSheetID int) error {
	dn := w.rootElement().SelectElement("definedNames")
	if dn != nil {
		for _, el := range dn.SelectElements("definedName") {
			if d := toDefinedName(el); strings.EqualFold(d.Name, name) && d.LocalSheetID == localSheetID {
				removeElement(el)
				w.dropEmptyDefinedNames()
				return nil
			}
		}
	}
	return fmt.Errorf("%w: no defined name %q", ErrInput, name)
}

func (w *Workbook) dropEmptyDefinedNames() {
	if dn := w.rootElement().SelectElement("definedNames"); dn != nil && len(dn.ChildElements()) == 0 {
		removeElement(dn)
	}
}

// renameSheetReferences rewrites defined names that refer to oldName.
func (w *Workbook) renameSheetReferences(oldName, newName string) {
	dn := w.rootElement().SelectElement("definedNames")
	if dn == nil {
		return
	}
	for _, el := range dn.SelectElements("definedName") {
		if v := el.Text(); v != "" {
			el.SetText(renameSheetInFormula(v, oldName, newName))
		}
	}
}

// remapLocalSheetIDs rewrites every localSheetId through fn; names for
// which fn returns -1 are removed.
func (w *Workbook) remapLocalSheetIDs(fn func(old int) int) {
	dn := w.rootElement().SelectElement("definedNames")
	if dn == nil {
		return
	}
	for _, el := range dn.SelectElements("definedName") {
		a := el.SelectAttr("localSheetId")
		if a == nil {
			continue
		}
		old, err := strconv.Atoi(a.Value)
		if err != nil {
			continue
		}
		if n := fn(old); n < 0 {
			removeElement(el)
		} else {
			setAttrUint(el, "localSheetId", uint64(n))
		}
	}
	w.dropEmptyDefinedNames()
}

// validateSheetName applies Excel's sheet naming rules.
func validateSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: sheet name must not be empty", ErrInput)
	}
	if len([]rune(name)) > 31 {
		return fmt.Errorf("%w: sheet name %q is longer than 31 characters", ErrInput, name)
	}
	if strings.ContainsAny(name, `[]*?/\:`) {
		return fmt.Errorf("%w: sheet name %q contains one of []*?/\\:", ErrInput, name)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%w: sheet name %q must not start or end with an apostrophe", ErrInput, name)
	}
	return nil
}

// checkNewSheetName validates name and makes sure no other sheet uses it
// (case-insensitively).
func (w *Workbook) checkNewSheetName(name string) error {
	if err := validateSheetName(name); err != nil {
		return err
	}
	for _, existing := range w.SheetNames() {
		if strings.EqualFold(existing, name) {
			return fmt.Errorf("%w: a sheet named %q already exists", ErrInput, existing)
		}
	}
	return nil
}
