// Package zonemerge merges zone-annotated text templates with structured data.
//
// Templates are plain text, Markdown or text-based XML. All three are treated
// as opaque text: markup that is not a zone tag passes through unchanged.
//
// # Quick Start
//
//	tmpl, err := zonemerge.Parse("Hi [[Name]], <ls_body>Order [[OrderID]] ready.</ls_body>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	input, err := zonemerge.ReadInput(strings.NewReader(`{"zones": [
//	    {"zonename": "global", "zonekeys": {"Name": "Ann"}},
//	    {"zonename": "body", "zonekeys": {"OrderID": "42"}}
//	]}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := zonemerge.Merge(tmpl, input)
//	// out == "Hi Ann, Order 42 ready."
//
// # Template Syntax
//
// Zones:
//
//	<ls_name>...</ls_name>
//
// Repeating rows, only directly inside a zone:
//
//	<ls_row>...</ls_row>
//
// Placeholders, keys made of letters, digits and underscores:
//
//	[[Key]]
//
// Zones cannot be nested. An unclosed, mismatched or misplaced tag fails the
// parse with a *ParseError that carries the tag and its line and column.
//
// # Merge Data
//
// Input is a JSON or YAML document:
//
//	{"zones": [
//	    {"zonename": "global", "zonekeys": {"Company": "ACME"}},
//	    {"zonename": "items", "zonekeys": {"Title": "Order"},
//	     "zonearray": [{"Item": "bolts"}, {"Item": "nuts"}]},
//	    {"zonename": "promo", "zonedelete": true}
//	]}
//
// The "global" entry supplies document-wide keys. A global key always wins over
// a zone key of the same name. Rows are rendered once per zonearray entry with
// the globals and that entry; zone text outside rows uses the globals and the
// zone's zonekeys. A deleted zone contributes nothing to the output.
// Placeholders with no value are left in the output as written.
//
// # Staged Merges
//
// TextMerger wraps the pure Parse and Merge functions for callers that load a
// template and data separately:
//
//	m := zonemerge.NewTextMerger(zonemerge.FormatMarkdown)
//	if err := m.LoadTemplateFile("letter.md"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.LoadInputFile("letter.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := m.PerformMerge(); err != nil {
//	    log.Fatal(err)
//	}
//	err := m.SaveOutput("out.md")
//
// # Configuration
//
// Engines read Config from zonemerge.yaml and ZONEMERGE_* environment
// variables (see LoadConfigFile), or take one directly:
//
//	engine := zonemerge.NewWithOptions(
//	    zonemerge.WithWorkers(8),
//	    zonemerge.WithStrictMode(true),
//	)
//
// A parsed Template is immutable and may be shared by concurrent merges, which
// is what Engine.MergeAll does for batches.
package zonemerge
