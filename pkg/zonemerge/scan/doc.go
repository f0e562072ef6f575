// Package scan provides the character-level scanners used by the zonemerge engine.
//
// The package contains two independent state machines over template text:
//
//   - lexer.go: splits a template into text runs and zone/row delimiter tags
//     (<ls_name>, </ls_name>, <ls_row>, </ls_row>), recording the byte offset,
//     line and column of every tag.
//   - placeholder.go: finds [[Key]] placeholders in a block of text and replaces
//     them through a caller-supplied resolver.
//
// # Design Principles
//
// Pure Functions: nothing in this package keeps state between calls, logs, or
// imports the zonemerge package. Scanning is single-pass and left-to-right, and
// text that does not match the delimiter or placeholder grammar is passed through
// untouched rather than reported as an error. Structural validation (unclosed or
// mismatched tags) is the parser's job.
//
// Example of replacing placeholders:
//
//	out := scan.Replace("Hi [[Name]]!", func(key string) (string, bool) {
//	    if key == "Name" {
//	        return "Ann", true
//	    }
//	    return "", false
//	})
//	// out == "Hi Ann!"
//
// Example of lexing delimiters:
//
//	for _, tok := range scan.Lex("a<ls_body>b</ls_body>") {
//	    fmt.Println(tok.Kind, tok.Value)
//	}
//	// Text a
//	// ZoneOpen body
//	// Text b
//	// ZoneClose body
package scan
