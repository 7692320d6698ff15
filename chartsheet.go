package xlgraph

// Chartsheet is a sheet that holds a single chart. Chart content itself is
// not modelled; a chartsheet created here has no drawing.
type Chartsheet struct {
	*Sheet
}

// HasDrawing reports whether the chartsheet references a drawing part.
func (c *Chartsheet) HasDrawing() bool {
	return c.root().SelectElement("drawing") != nil
}

// ZoomToFit reports whether the chart is scaled to the window.
func (c *Chartsheet) ZoomToFit() bool {
	views := c.root().SelectElement("sheetViews")
	if views == nil || views.SelectElement("sheetView") == nil {
		return false
	}
	return attrBool(views.SelectElement("sheetView"), "zoomToFit", false)
}

// SetZoomToFit sets whether the chart is scaled to the window.
func (c *Chartsheet) SetZoomToFit(fit bool) {
	views := childOrCreate(c.root(), "sheetViews", chartsheetOrder)
	view := views.SelectElement("sheetView")
	if view == nil {
		view = views.CreateElement("sheetView")
		view.CreateAttr("workbookViewId", "0")
	}
	setAttrBool(view, "zoomToFit", fit)
}
