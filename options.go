package xlgraph

import "go.uber.org/zap"

// Options holds configuration for a Document.
type Options struct {
	logger            *zap.Logger
	newArchive        func() Archive
	recalculateOnOpen bool
	inlineStrings     bool
	defaultSheetName  string
	evaluator         ExpressionEvaluator
}

func defaultOptions() *Options {
	return &Options{
		logger:           zap.NewNop(),
		newArchive:       NewZipArchive,
		defaultSheetName: "Sheet1",
		evaluator:        NewExpressionEvaluator(),
	}
}

// Option configures a Document.
type Option func(*Options)

// WithLogger sets the logger used for diagnostics (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithArchive replaces the archive codec (default: NewZipArchive).
func WithArchive(factory func() Archive) Option {
	return func(o *Options) {
		if factory != nil {
			o.newArchive = factory
		}
	}
}

// WithRecalculateOnOpen tells Excel to recalculate all formulas when the file is opened.
func WithRecalculateOnOpen(recalc bool) Option {
	return func(o *Options) { o.recalculateOnOpen = recalc }
}

// WithInlineStrings stores string cell values inline instead of in the
// shared string table.
func WithInlineStrings(inline bool) Option {
	return func(o *Options) { o.inlineStrings = inline }
}

// WithDefaultSheetName sets the name of the first sheet of a new document (default: "Sheet1").
func WithDefaultSheetName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.defaultSheetName = name
		}
	}
}

// WithEvaluator replaces the evaluator used by CellRange.Find.
func WithEvaluator(ev ExpressionEvaluator) Option {
	return func(o *Options) {
		if ev != nil {
			o.evaluator = ev
		}
	}
}
