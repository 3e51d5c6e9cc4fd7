// Package errors provides coded, actionable errors for storable.
//
// Every error carries a stable code (e.g. "S001") mapped to a category, a short
// message and a longer explanation:
//
//   - config: wiring defects detected at install or load time (unresolvable
//     button paths, unknown collections, malformed configuration files)
//   - validation: form input rejected locally
//   - persistence: a collection reported a failed write
//   - transport: a proxy could not reach its backend
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("S001").
//	    WithDetail(`no button "btn-save" in bbar`).
//	    WithSuggestion(`declare the button with ItemID "btn-save"`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR S001: Save or cancel button not found
//	//
//	//   no button "btn-save" in bbar
//	//
//	//   Hint: declare the button with ItemID "btn-save"
//
// Configuration files decoded from HCL attach the diagnostic location, so the
// formatted error also shows the offending source lines.
package errors
