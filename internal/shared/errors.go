package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog lookup errors
	ErrDistroNotFound = fmt.Errorf("distribution not found")
	ErrSourceNotFound = fmt.Errorf("source not found")
	ErrAppNotFound    = fmt.Errorf("application not found")

	// Resolution input errors
	ErrNoApplications    = fmt.Errorf("no applications selected")
	ErrInvalidPreference = fmt.Errorf("invalid source preference")

	// Catalog integrity errors
	ErrTemplateInvalid  = fmt.Errorf("command template is invalid")
	ErrDuplicatePackage = fmt.Errorf("duplicate package for application and source")

	// Remote catalog errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
