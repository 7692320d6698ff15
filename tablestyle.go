package xlgraph

import (
	"fmt"
	"regexp"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

var builtinTableStyle = regexp.MustCompile(`^TableStyle(Light([1-9]|1[0-9]|2[01])|Medium([1-9]|1[0-9]|2[0-8])|Dark([1-9]|1[01]))$`)

// TableStyle is the <tableStyleInfo> of a table.
type TableStyle struct {
	table *Table
}

func (s *TableStyle) node() *etree.Element {
	return s.table.root().SelectElement("tableStyleInfo")
}

func (s *TableStyle) nodeOrCreate() *etree.Element {
	return childOrCreate(s.table.root(), "tableStyleInfo", tableOrder)
}

// Name returns the style name, or "" when the table has no style.
func (s *TableStyle) Name() string {
	if n := s.node(); n != nil {
		return attr(n, "name")
	}
	return ""
}

// SetName applies a built-in style (TableStyleLight1-21, Medium1-28,
// Dark1-11) or a custom table style defined in styles.xml.
func (s *TableStyle) SetName(name string) error {
	if !builtinTableStyle.MatchString(name) && !s.table.doc.customTableStyle(name) {
		s.table.doc.logger.Warn("rejected table style",
			zap.String("table", s.table.Name()),
			zap.String("style", name))
		return fmt.Errorf("%w: unknown table style %q", ErrInput, name)
	}
	s.nodeOrCreate().CreateAttr("name", name)
	return nil
}

func (s *TableStyle) flag(key string) bool {
	n := s.node()
	return n != nil && attrBool(n, key, false)
}

// ShowFirstColumn reports whether the first column is highlighted.
func (s *TableStyle) ShowFirstColumn() bool { return s.flag("showFirstColumn") }

// SetShowFirstColumn toggles first column highlighting.
func (s *TableStyle) SetShowFirstColumn(v bool) { setAttrBool(s.nodeOrCreate(), "showFirstColumn", v) }

// ShowLastColumn reports whether the last column is highlighted.
func (s *TableStyle) ShowLastColumn() bool { return s.flag("showLastColumn") }

// SetShowLastColumn toggles last column highlighting.
func (s *TableStyle) SetShowLastColumn(v bool) { setAttrBool(s.nodeOrCreate(), "showLastColumn", v) }

// ShowRowStripes reports whether rows are banded.
func (s *TableStyle) ShowRowStripes() bool { return s.flag("showRowStripes") }

// SetShowRowStripes toggles row banding.
func (s *TableStyle) SetShowRowStripes(v bool) { setAttrBool(s.nodeOrCreate(), "showRowStripes", v) }

// ShowColumnStripes reports whether columns are banded.
func (s *TableStyle) ShowColumnStripes() bool { return s.flag("showColumnStripes") }

// SetShowColumnStripes toggles column banding.
func (s *TableStyle) SetShowColumnStripes(v bool) {
	setAttrBool(s.nodeOrCreate(), "showColumnStripes", v)
}

// customTableStyle reports whether styles.xml defines a table style name.
func (d *Document) customTableStyle(name string) bool {
	for _, p := range d.partsOfType(ContentStyles) {
		root, err := p.root()
		if err != nil {
			d.logger.Warn("unreadable styles part", zap.String("path", p.path), zap.Error(err))
			continue
		}
		styles := root.SelectElement("tableStyles")
		if styles == nil {
			continue
		}
		for _, ts := range styles.SelectElements("tableStyle") {
			if attr(ts, "name") == name {
				return true
			}
		}
	}
	return false
}
