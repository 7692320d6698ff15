package xlgraph

import (
	"fmt"
	"slices"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Excel will refuse or repair the file
	SeverityWarning                 // Excel opens the file but shows stale metadata
)

// ValidationIssue is one consistency problem in the part graph.
type ValidationIssue struct {
	Severity Severity
	Path     string // part the issue was found in
	Message  string
}

// String formats the issue as "[ERROR] xl/workbook.xml: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Path, v.Message)
}

// Validate checks the cross-part invariants of the package without
// changing it. An empty result means Excel should open the file as is.
func (d *Document) Validate() []ValidationIssue {
	var issues []ValidationIssue
	issues = append(issues, d.validateContentTypes()...)
	issues = append(issues, d.validateRelationships()...)
	issues = append(issues, d.validateSheets()...)
	issues = append(issues, d.validateTables()...)
	return issues
}

// validateContentTypes checks that every registered XML part is declared.
func (d *Document) validateContentTypes() []ValidationIssue {
	var issues []ValidationIssue
	for _, pp := range d.order {
		p := d.parts[pp]
		if p.kind == ContentPackageTypes || p.kind == ContentRelationships {
			continue
		}
		if _, ok := d.contentTypes.TypeOf(p.path); !ok {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Path:     contentTypesPath,
				Message:  fmt.Sprintf("no content type declared for %s", p.path),
			})
		}
	}
	return issues
}

// validateRelationships checks that every internal relationship points at
// an existing part or archive entry.
func (d *Document) validateRelationships() []ValidationIssue {
	var issues []ValidationIssue
	check := func(rels *Relationships) {
		for _, rel := range rels.Items() {
			if rel.External {
				continue
			}
			target := rels.AbsoluteTarget(rel)
			if _, ok := d.parts[target]; ok || d.archive.HasEntry(target) {
				continue
			}
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Path:     rels.part.path,
				Message:  fmt.Sprintf("relationship %s targets missing part %s", rel.ID, target),
			})
		}
	}
	check(d.docRels)
	check(d.wbRels)
	for _, p := range d.sheetParts() {
		if _, ok := d.parts[relsPathFor(p.path)]; !ok && !d.archive.HasEntry(relsPathFor(p.path)) {
			continue
		}
		rels, err := d.relationshipsFor(p.path, false)
		if err != nil {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path, Message: err.Error()})
			continue
		}
		check(rels)
	}
	return issues
}

// validateSheets checks the workbook sheet list against the sheet parts,
// the view state and docProps/app.xml.
func (d *Document) validateSheets() []ValidationIssue {
	var issues []ValidationIssue
	wb := d.workbook
	add := func(sev Severity, path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, el := range wb.sheetElements() {
		id := attr(el, "r:id")
		rel, ok := d.wbRels.ByID(id)
		if !ok {
			add(SeverityError, d.workbookPath, "sheet %q references unknown relationship %q", attr(el, "name"), id)
			continue
		}
		if _, ok := d.parts[d.wbRels.AbsoluteTarget(rel)]; !ok {
			add(SeverityError, d.workbookPath, "sheet %q has no part", attr(el, "name"))
		}
	}
	if wb.SheetCount() > 0 && wb.visibleCount() == 0 {
		add(SeverityError, d.workbookPath, "no visible sheet")
	}
	if active := wb.activeTab(); wb.SheetCount() == 0 {
		add(SeverityError, d.workbookPath, "workbook has no sheets")
	} else if active >= wb.SheetCount() {
		add(SeverityError, d.workbookPath, "activeTab %d is past the last sheet", active)
	} else if parseSheetVisibility(attr(wb.sheetElements()[active], "state")) != SheetVisible {
		add(SeverityWarning, d.workbookPath, "active sheet %q is hidden", attr(wb.sheetElements()[active], "name"))
	}
	for _, dn := range wb.DefinedNames() {
		if dn.LocalSheetID >= wb.SheetCount() {
			add(SeverityError, d.workbookPath, "defined name %q is scoped to missing sheet %d", dn.Name, dn.LocalSheetID)
		}
	}

	if d.app != nil {
		if got, want := d.app.SheetNames(), wb.SheetNames(); !sameNames(got, want) {
			add(SeverityWarning, d.app.part.path, "sheet titles [%s] do not match workbook [%s]",
				strings.Join(got, ", "), strings.Join(want, ", "))
		}
	}
	return issues
}

// sameNames compares sheet name sets; app.xml lists worksheets before
// chartsheets, so tab order is not significant.
func sameNames(a, b []string) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// validateTables checks table names, ids and column counts.
func (d *Document) validateTables() []ValidationIssue {
	var issues []ValidationIssue
	names := make(map[string]string)
	ids := make(map[uint64]string)
	for _, p := range d.partsOfType(ContentTable) {
		t, err := newTable(d, p)
		if err != nil {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path, Message: err.Error()})
			continue
		}
		key := strings.ToLower(t.Name())
		if other, ok := names[key]; ok {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path,
				Message: fmt.Sprintf("table name %q is also used by %s", t.Name(), other)})
		}
		names[key] = p.path
		if other, ok := ids[t.ID()]; ok {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path,
				Message: fmt.Sprintf("table id %d is also used by %s", t.ID(), other)})
		}
		ids[t.ID()] = p.path

		ref, err := t.Ref()
		if err != nil {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path, Message: err.Error()})
			continue
		}
		if cols := len(t.Columns()); cols != int(ref.NumColumns()) {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Path: p.path,
				Message: fmt.Sprintf("table %q has %d columns but ref %s spans %d", t.Name(), cols, ref, ref.NumColumns())})
		}
	}
	return issues
}
