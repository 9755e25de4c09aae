// Package assertions contains the checks applied to service responses.
//
// Every check is an independent function that returns nil or an error describing exactly
// what was expected and what was observed, so a single mismatched field produces a precise
// failure message rather than a generic schema error. Checks never panic and never look at
// anything but their arguments; composing them is up to the caller, usually with All.
package assertions
