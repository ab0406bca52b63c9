// Package errors provides structured, actionable error messages for hermes.
//
// Every error carries a code (e.g. "H001") registered with a category,
// a short message and a longer explanation. Callers add detail, a fix
// suggestion and an underlying cause:
//
//	err := errors.New("H004").
//	    WithDetail(`no style named "sucess"`).
//	    WithSuggestion("Configured types: error, info, success, warning")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR H004: Unknown notification type
//	//
//	//   no style named "sucess"
//	//
//	//   Hint: Configured types: error, info, success, warning
//
// # Error Categories
//
//   - config: invalid notifier or file configuration
//   - runtime: misuse of a running notifier
//   - scenario: malformed simulation scripts
//   - protocol: bad messages from a live client
//   - cli: command line usage errors
//
// HermesError supports errors.Is and errors.As through Unwrap, and two
// errors compare equal under errors.Is when their codes match.
package errors
