package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errClusterNameRequired = errors.New("cluster name is required")
	errClusterNameInvalid  = errors.New("cluster name must be lowercase alphanumeric characters, '-' or '.', starting and ending with alphanumeric")
	errVersionInvalid      = errors.New("chart version must be a semantic version, e.g. 1.13.4")
	errCertificateARN      = errors.New("certificate ARN must look like arn:aws:acm:<region>:<account>:certificate/<id>")
	errNotInteractive      = errors.New("wizard needs an interactive terminal")
)
