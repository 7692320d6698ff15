package xlgraph

import (
	"fmt"
	"html"
)

const (
	contentTypesPath  = "[Content_Types].xml"
	docRelsPath       = "_rels/.rels"
	workbookPath      = "xl/workbook.xml"
	workbookRelsPath  = "xl/_rels/workbook.xml.rels"
	sharedStringsPath = "xl/sharedStrings.xml"
	stylesPath        = "xl/styles.xml"
	appPropsPath      = "docProps/app.xml"
	corePropsPath     = "docProps/core.xml"

	mainNamespace = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	xmlDecl       = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

const templateContentTypes = xmlDecl +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
	`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
	`<Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>` +
	`<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const templateDocRels = xmlDecl +
	`<Relationships xmlns="` + relsNamespace + `">` +
	`<Relationship Id="rId1" Type="` + relDomainOpenXML + `/relationships/officeDocument" Target="xl/workbook.xml"/>` +
	`<Relationship Id="rId2" Type="` + relDomainPackage + `/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="` + relDomainOpenXML + `/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const templateWorkbookRels = xmlDecl +
	`<Relationships xmlns="` + relsNamespace + `">` +
	`<Relationship Id="rId1" Type="` + relDomainOpenXML + `/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
	`<Relationship Id="rId2" Type="` + relDomainOpenXML + `/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId3" Type="` + relDomainOpenXML + `/relationships/sharedStrings" Target="sharedStrings.xml"/>` +
	`</Relationships>`

const templateWorkbook = xmlDecl +
	`<workbook xmlns="` + mainNamespace + `" xmlns:r="` + officeRelNamespace + `">` +
	`<bookViews><workbookView xWindow="0" yWindow="0" windowWidth="28800" windowHeight="12300" activeTab="0"/></bookViews>` +
	`<sheets><sheet name="%s" sheetId="1" r:id="rId1"/></sheets>` +
	`<calcPr calcId="191029"/>` +
	`</workbook>`

const templateApp = xmlDecl +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
	`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
	`<Application>xlgraph</Application><DocSecurity>0</DocSecurity><ScaleCrop>false</ScaleCrop>` +
	`<HeadingPairs><vt:vector size="2" baseType="variant">` +
	`<vt:variant><vt:lpstr>Worksheets</vt:lpstr></vt:variant><vt:variant><vt:i4>1</vt:i4></vt:variant>` +
	`</vt:vector></HeadingPairs>` +
	`<TitlesOfParts><vt:vector size="1" baseType="lpstr"><vt:lpstr>%s</vt:lpstr></vt:vector></TitlesOfParts>` +
	`<LinksUpToDate>false</LinksUpToDate><SharedDoc>false</SharedDoc><HyperlinksChanged>false</HyperlinksChanged>` +
	`<AppVersion>16.0300</AppVersion>` +
	`</Properties>`

const templateCore = xmlDecl +
	`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
	`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:creator>xlgraph</dc:creator>` +
	`</cp:coreProperties>`

const templateStyles = xmlDecl +
	`<styleSheet xmlns="` + mainNamespace + `">` +
	`<fonts count="1"><font><sz val="11"/><color theme="1"/><name val="Calibri"/><family val="2"/><scheme val="minor"/></font></fonts>` +
	`<fills count="2"><fill><patternFill patternType="none"/></fill><fill><patternFill patternType="gray125"/></fill></fills>` +
	`<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>` +
	`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>` +
	`<cellXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/></cellXfs>` +
	`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>` +
	`<dxfs count="0"/>` +
	`<tableStyles count="0" defaultTableStyle="TableStyleMedium2" defaultPivotStyle="PivotStyleLight16"/>` +
	`</styleSheet>`

const templateSharedStrings = xmlDecl +
	`<sst xmlns="` + mainNamespace + `" count="0" uniqueCount="0"/>`

const templateRels = xmlDecl +
	`<Relationships xmlns="` + relsNamespace + `"/>`

const templateWorksheet = xmlDecl +
	`<worksheet xmlns="` + mainNamespace + `" xmlns:r="` + officeRelNamespace + `">` +
	`<dimension ref="A1"/>` +
	`<sheetViews><sheetView workbookViewId="0"/></sheetViews>` +
	`<sheetFormatPr defaultRowHeight="15"/>` +
	`<sheetData/>` +
	`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
	`</worksheet>`

const templateFirstWorksheet = xmlDecl +
	`<worksheet xmlns="` + mainNamespace + `" xmlns:r="` + officeRelNamespace + `">` +
	`<dimension ref="A1"/>` +
	`<sheetViews><sheetView tabSelected="1" workbookViewId="0"/></sheetViews>` +
	`<sheetFormatPr defaultRowHeight="15"/>` +
	`<sheetData/>` +
	`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
	`</worksheet>`

const templateChartsheet = xmlDecl +
	`<chartsheet xmlns="` + mainNamespace + `" xmlns:r="` + officeRelNamespace + `">` +
	`<sheetPr/>` +
	`<sheetViews><sheetView zoomToFit="1" workbookViewId="0"/></sheetViews>` +
	`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
	`</chartsheet>`

const templateTable = xmlDecl +
	`<table xmlns="` + mainNamespace + `" id="%d" name="%s" displayName="%s" ref="%s">` +
	`<autoFilter ref="%s"/>` +
	`<tableColumns count="0"/>` +
	`<tableStyleInfo name="TableStyleLight1" showFirstColumn="0" showLastColumn="0" showRowStripes="1" showColumnStripes="0"/>` +
	`</table>`

// emptyPackage returns the entries of a new workbook with one worksheet.
func emptyPackage(sheetName string) [][2]string {
	name := html.EscapeString(sheetName)
	return [][2]string{
		{contentTypesPath, templateContentTypes},
		{docRelsPath, templateDocRels},
		{appPropsPath, fmt.Sprintf(templateApp, name)},
		{corePropsPath, templateCore},
		{workbookPath, fmt.Sprintf(templateWorkbook, name)},
		{workbookRelsPath, templateWorkbookRels},
		{"xl/worksheets/sheet1.xml", templateFirstWorksheet},
		{stylesPath, templateStyles},
		{sharedStringsPath, templateSharedStrings},
	}
}

func tableXML(id uint64, name, ref string) string {
	n := html.EscapeString(name)
	return fmt.Sprintf(templateTable, id, n, n, ref, ref)
}
