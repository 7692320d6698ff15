package xlgraph

import (
	"fmt"
	"strings"
)

// Query is a read-only request answered by the document. Handlers fill in
// the result fields of the query they are given, so queries are passed by
// pointer.
type Query interface {
	Name() string
}

// QuerySheetName looks up a sheet's name by relationship id.
type QuerySheetName struct {
	SheetID   string
	SheetName string
}

// QuerySheetVisibility looks up a sheet's state.
type QuerySheetVisibility struct {
	SheetID    string
	Visibility SheetVisibility
}

// QuerySheetIndex looks up a sheet's 1-based tab position.
type QuerySheetIndex struct {
	SheetID string
	Index   int
}

// QuerySheetType reports whether a sheet is a worksheet or a chartsheet.
type QuerySheetType struct {
	SheetID string
	Type    ContentType
}

// QuerySheetIsActive reports whether a sheet is the active tab.
type QuerySheetIsActive struct {
	SheetID string
	Active  bool
}

// QuerySheetRelsID finds the workbook relationship id of a sheet part.
type QuerySheetRelsID struct {
	SheetPath string
	RelsID    string
}

// QuerySheetRelsTarget finds the target of a sheet's workbook relationship.
type QuerySheetRelsTarget struct {
	SheetID string
	Target  string
}

// QuerySharedStrings returns the shared string table.
type QuerySharedStrings struct {
	Strings *SharedStrings
}

// QueryXmlData returns the part stored at Path.
type QueryXmlData struct {
	Path string
	Part *Part
}

// QueryTableFromName finds a table part by name, ignoring case.
type QueryTableFromName struct {
	TableName string
	Part      *Part
}

// QuerySheetFromName finds a sheet part by name.
type QuerySheetFromName struct {
	SheetName string
	Part      *Part
}

func (*QuerySheetName) Name() string       { return "sheetName" }
func (*QuerySheetVisibility) Name() string { return "sheetVisibility" }
func (*QuerySheetIndex) Name() string      { return "sheetIndex" }
func (*QuerySheetType) Name() string       { return "sheetType" }
func (*QuerySheetIsActive) Name() string   { return "sheetIsActive" }
func (*QuerySheetRelsID) Name() string     { return "sheetRelsID" }
func (*QuerySheetRelsTarget) Name() string { return "sheetRelsTarget" }
func (*QuerySharedStrings) Name() string   { return "sharedStrings" }
func (*QueryXmlData) Name() string         { return "xmlData" }
func (*QueryTableFromName) Name() string   { return "tableFromName" }
func (*QuerySheetFromName) Name() string   { return "sheetFromName" }

// QueryHandler answers one kind of query.
type QueryHandler func(d *Document, q Query) error

// QueryRegistry maps query names to their handlers.
type QueryRegistry struct {
	handlers map[string]QueryHandler
}

// NewQueryRegistry creates a registry with the built-in queries.
func NewQueryRegistry() *QueryRegistry {
	r := &QueryRegistry{handlers: make(map[string]QueryHandler)}
	r.Register("sheetName", answer((*Document).querySheetName))
	r.Register("sheetVisibility", answer((*Document).querySheetVisibility))
	r.Register("sheetIndex", answer((*Document).querySheetIndex))
	r.Register("sheetType", answer((*Document).querySheetType))
	r.Register("sheetIsActive", answer((*Document).querySheetIsActive))
	r.Register("sheetRelsID", answer((*Document).querySheetRelsID))
	r.Register("sheetRelsTarget", answer((*Document).querySheetRelsTarget))
	r.Register("sharedStrings", answer((*Document).querySharedStrings))
	r.Register("xmlData", answer((*Document).queryXMLData))
	r.Register("tableFromName", answer((*Document).queryTableFromName))
	r.Register("sheetFromName", answer((*Document).querySheetFromName))
	return r
}

// Register adds or replaces a query handler.
func (r *QueryRegistry) Register(name string, handler QueryHandler) {
	r.handlers[name] = handler
}

func answer[Q Query](fn func(*Document, Q) error) QueryHandler {
	return func(d *Document, q Query) error {
		typed, ok := q.(Q)
		if !ok {
			return fmt.Errorf("%w: query %s has unexpected type %T", ErrInternal, q.Name(), q)
		}
		return fn(d, typed)
	}
}

// ExecQuery answers a query in place.
func (d *Document) ExecQuery(q Query) error {
	h, ok := d.queries.handlers[q.Name()]
	if !ok {
		return fmt.Errorf("%w: unknown query %q", ErrInternal, q.Name())
	}
	return h(d, q)
}

func (d *Document) querySheetName(q *QuerySheetName) error {
	node := d.workbook.sheetNode(q.SheetID)
	if node == nil {
		return fmt.Errorf("%w: no sheet with r:id %q", ErrInternal, q.SheetID)
	}
	q.SheetName = attr(node, "name")
	return nil
}

func (d *Document) querySheetVisibility(q *QuerySheetVisibility) error {
	node := d.workbook.sheetNode(q.SheetID)
	if node == nil {
		return fmt.Errorf("%w: no sheet with r:id %q", ErrInternal, q.SheetID)
	}
	q.Visibility = parseSheetVisibility(attr(node, "state"))
	return nil
}

func (d *Document) querySheetIndex(q *QuerySheetIndex) error {
	pos := d.workbook.sheetPosition(q.SheetID)
	if pos < 0 {
		return fmt.Errorf("%w: no sheet with r:id %q", ErrInternal, q.SheetID)
	}
	q.Index = pos + 1
	return nil
}

func (d *Document) querySheetType(q *QuerySheetType) error {
	node := d.workbook.sheetNode(q.SheetID)
	if node == nil {
		return fmt.Errorf("%w: no sheet with r:id %q", ErrInternal, q.SheetID)
	}
	kind := d.workbook.sheetKind(node)
	if kind == ContentUnknown {
		return fmt.Errorf("%w: sheet %q is neither a worksheet nor a chartsheet", ErrInternal, q.SheetID)
	}
	q.Type = kind
	return nil
}

func (d *Document) querySheetIsActive(q *QuerySheetIsActive) error {
	pos := d.workbook.sheetPosition(q.SheetID)
	if pos < 0 {
		return fmt.Errorf("%w: no sheet with r:id %q", ErrInternal, q.SheetID)
	}
	q.Active = d.workbook.activeTab() == pos
	return nil
}

func (d *Document) querySheetRelsID(q *QuerySheetRelsID) error {
	rel, ok := d.wbRels.ByTarget("/" + strings.TrimPrefix(q.SheetPath, "/"))
	if !ok {
		return fmt.Errorf("%w: no workbook relationship targets %q", ErrInternal, q.SheetPath)
	}
	q.RelsID = rel.ID
	return nil
}

func (d *Document) querySheetRelsTarget(q *QuerySheetRelsTarget) error {
	rel, ok := d.wbRels.ByID(q.SheetID)
	if !ok {
		return fmt.Errorf("%w: no workbook relationship %q", ErrInternal, q.SheetID)
	}
	q.Target = d.wbRels.AbsoluteTarget(rel)
	return nil
}

func (d *Document) querySharedStrings(q *QuerySharedStrings) error {
	if d.sharedStrings == nil {
		return fmt.Errorf("%w: shared strings are not loaded", ErrInternal)
	}
	q.Strings = d.sharedStrings
	return nil
}

func (d *Document) queryXMLData(q *QueryXmlData) error {
	p, err := d.Part(q.Path)
	if err != nil {
		return err
	}
	q.Part = p
	return nil
}

func (d *Document) queryTableFromName(q *QueryTableFromName) error {
	for _, p := range d.partsOfType(ContentTable) {
		if strings.EqualFold(p.name, q.TableName) {
			q.Part = p
			return nil
		}
	}
	return fmt.Errorf("%w: no table named %q", ErrInternal, q.TableName)
}

func (d *Document) querySheetFromName(q *QuerySheetFromName) error {
	node := d.workbook.sheetNodeByName(q.SheetName)
	if node == nil {
		return fmt.Errorf("%w: no sheet named %q", ErrInternal, q.SheetName)
	}
	_, p, err := d.resolveSheet(attr(node, "r:id"))
	if err != nil {
		return err
	}
	q.Part = p
	return nil
}
