package xlgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Color is an ARGB colour as stored in tabColor@rgb.
type Color struct {
	A, R, G, B uint8
}

// ParseColor reads an "AARRGGBB" or "RRGGBB" hex string.
func ParseColor(hex string) (Color, error) {
	if len(hex) == 6 {
		hex = "FF" + hex
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 8 || err != nil {
		return Color{}, fmt.Errorf("%w: %q is not an ARGB colour", ErrInput, hex)
	}
	return Color{A: uint8(n >> 24), R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Hex returns the colour as "AARRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

var chartsheetOrder = []string{
	"sheetPr", "sheetViews", "sheetProtection", "customSheetViews", "pageMargins",
	"pageSetup", "headerFooter", "drawing", "legacyDrawing", "legacyDrawingHF",
	"picture", "webPublishItems", "extLst",
}

// sheetBehavior holds what differs between worksheets and chartsheets for
// the operations every sheet supports.
type sheetBehavior struct {
	order       []string
	color       func(root *etree.Element) (Color, bool)
	setColor    func(root *etree.Element, c Color, order []string)
	isSelected  func(root *etree.Element) bool
	setSelected func(root *etree.Element, selected bool, order []string)
}

var sheetBehaviors = map[ContentType]sheetBehavior{
	ContentWorksheet: {
		order:       worksheetOrder,
		color:       tabColor,
		setColor:    setTabColor,
		isSelected:  isSheetSelected,
		setSelected: setTabSelected,
	},
	ContentChartsheet: {
		order:       chartsheetOrder,
		color:       tabColor,
		setColor:    setTabColor,
		isSelected:  isSheetSelected,
		setSelected: setTabSelected,
	},
}

func tabColor(root *etree.Element) (Color, bool) {
	pr := root.SelectElement("sheetPr")
	if pr == nil || pr.SelectElement("tabColor") == nil {
		return Color{}, false
	}
	c, err := ParseColor(attr(pr.SelectElement("tabColor"), "rgb"))
	return c, err == nil
}

func setTabColor(root *etree.Element, c Color, order []string) {
	pr := childOrCreate(root, "sheetPr", order)
	tc := pr.SelectElement("tabColor")
	if tc == nil {
		// tabColor is the first child of sheetPr
		tc = etree.NewElement("tabColor")
		if first := firstElement(pr); first != nil {
			insertBefore(first, tc)
		} else {
			appendElement(pr, tc)
		}
	}
	tc.CreateAttr("rgb", c.Hex())
}

func isSheetSelected(root *etree.Element) bool {
	views := root.SelectElement("sheetViews")
	if views == nil || views.SelectElement("sheetView") == nil {
		return false
	}
	return attrBool(views.SelectElement("sheetView"), "tabSelected", false)
}

func setTabSelected(root *etree.Element, selected bool, order []string) {
	views := root.SelectElement("sheetViews")
	if views == nil {
		if !selected {
			return
		}
		views = childOrCreate(root, "sheetViews", order)
	}
	view := views.SelectElement("sheetView")
	if view == nil {
		view = views.CreateElement("sheetView")
		view.CreateAttr("workbookViewId", "0")
	}
	if selected {
		view.CreateAttr("tabSelected", "1")
	} else {
		view.RemoveAttr("tabSelected")
	}
}

// setSheetSelected updates the tabSelected flag of a sheet part.
func setSheetSelected(p *Part, selected bool) error {
	b, ok := sheetBehaviors[p.kind]
	if !ok {
		return fmt.Errorf("%w: %s is not a sheet", ErrInternal, p.path)
	}
	root, err := p.root()
	if err != nil {
		return err
	}
	b.setSelected(root, selected, b.order)
	return nil
}

// Sheet is a worksheet or a chartsheet. Everything that touches more than
// the sheet's own XML goes through the document as a command or query.
type Sheet struct {
	doc  *Document
	part *Part
	b    sheetBehavior
}

func newSheet(d *Document, p *Part) (*Sheet, error) {
	b, ok := sheetBehaviors[p.kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a sheet", ErrInternal, p.path, p.kind)
	}
	if _, err := p.root(); err != nil {
		return nil, err
	}
	return &Sheet{doc: d, part: p, b: b}, nil
}

func (s *Sheet) root() *etree.Element {
	root, _ := s.part.root()
	return root
}

// Part returns the sheet's XML part.
func (s *Sheet) Part() *Part { return s.part }

// Type returns ContentWorksheet or ContentChartsheet.
func (s *Sheet) Type() ContentType { return s.part.kind }

// Name returns the sheet name.
func (s *Sheet) Name() string {
	q := &QuerySheetName{SheetID: s.part.relsID}
	if err := s.doc.ExecQuery(q); err != nil {
		return s.part.name
	}
	return q.SheetName
}

// SetName renames the sheet, updating app properties, defined names and
// formulas that refer to it.
func (s *Sheet) SetName(name string) error {
	return s.doc.ExecCommand(SetSheetName{SheetID: s.part.relsID, OldName: s.Name(), NewName: name})
}

// Visibility returns the sheet state.
func (s *Sheet) Visibility() (SheetVisibility, error) {
	q := &QuerySheetVisibility{SheetID: s.part.relsID}
	if err := s.doc.ExecQuery(q); err != nil {
		return SheetVisible, err
	}
	return q.Visibility, nil
}

// SetVisibility hides or shows the sheet. The last visible sheet cannot be hidden.
func (s *Sheet) SetVisibility(v SheetVisibility) error {
	return s.doc.ExecCommand(SetSheetVisibility{SheetID: s.part.relsID, Visibility: v})
}

// Index returns the 1-based tab position.
func (s *Sheet) Index() (int, error) {
	q := &QuerySheetIndex{SheetID: s.part.relsID}
	if err := s.doc.ExecQuery(q); err != nil {
		return 0, err
	}
	return q.Index, nil
}

// SetIndex moves the sheet to a 1-based tab position.
func (s *Sheet) SetIndex(index int) error {
	return s.doc.ExecCommand(SetSheetIndex{SheetID: s.part.relsID, Index: index})
}

// IsActive reports whether the sheet is the workbook's active tab.
func (s *Sheet) IsActive() (bool, error) {
	q := &QuerySheetIsActive{SheetID: s.part.relsID}
	if err := s.doc.ExecQuery(q); err != nil {
		return false, err
	}
	return q.Active, nil
}

// SetActive makes the sheet the active and only selected tab.
func (s *Sheet) SetActive() error {
	return s.doc.ExecCommand(SetSheetActive{SheetID: s.part.relsID})
}

// Color returns the tab colour, if one is set.
func (s *Sheet) Color() (Color, bool) { return s.b.color(s.root()) }

// SetColor sets the tab colour.
func (s *Sheet) SetColor(c Color) { s.b.setColor(s.root(), c, s.b.order) }

// IsSelected reports whether the tab is selected.
func (s *Sheet) IsSelected() bool { return s.b.isSelected(s.root()) }

// SetSelected selects or deselects the tab without changing the active sheet.
func (s *Sheet) SetSelected(selected bool) { s.b.setSelected(s.root(), selected, s.b.order) }

// Clone copies the sheet under a new name. Only worksheets can be cloned.
func (s *Sheet) Clone(newName string) error {
	return s.doc.ExecCommand(CloneSheet{SheetID: s.part.relsID, NewName: newName})
}

// Worksheet returns the sheet as a worksheet.
func (s *Sheet) Worksheet() (*Worksheet, error) {
	if s.part.kind != ContentWorksheet {
		return nil, fmt.Errorf("%w: sheet %q is a chartsheet", ErrInput, s.Name())
	}
	return &Worksheet{Sheet: s}, nil
}

// Chartsheet returns the sheet as a chartsheet.
func (s *Sheet) Chartsheet() (*Chartsheet, error) {
	if s.part.kind != ContentChartsheet {
		return nil, fmt.Errorf("%w: sheet %q is a worksheet", ErrInput, s.Name())
	}
	return &Chartsheet{Sheet: s}, nil
}

func (s *Sheet) String() string {
	return fmt.Sprintf("%s (%s)", s.Name(), strings.TrimPrefix(s.part.path, "xl/"))
}
