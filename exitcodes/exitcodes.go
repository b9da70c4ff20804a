// Package exitcodes defines the process exit codes of op-reporter.
package exitcodes

// The binary distinguishes three terminal states. A report that was built
// and contains no problems exits with Success. A report that was built but
// contains failed or errored outcomes exits with ReportFailure. Anything
// that prevents a report from being built at all, such as an unreadable
// stream, a bad profile or a panic, exits with RuntimeErr.
const (
	Success       = 0
	ReportFailure = 1
	RuntimeErr    = 2
)
