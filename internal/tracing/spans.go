package tracing

// Span attribute keys.
const (
	AttrDocumentPath  = "document.path"
	AttrDocumentItems = "document.items"
	AttrFileFormat    = "file.format"
	AttrPartName      = "part.name"
	AttrRefDes        = "part.refdes"
	AttrCommand       = "cli.command"
)

// Span names.
const (
	SpanDocumentLoad  = "document.load"
	SpanDocumentSave  = "document.save"
	SpanLibraryLookup = "library.lookup"
	SpanCommandPrefix = "cli."
)
