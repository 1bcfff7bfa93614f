package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errStackNameRequired  = errors.New("stack name is required")
	errStackNameInvalid   = errors.New("stack name must be 1-63 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errPrefixInvalid      = errors.New("instance prefix must be lowercase alphanumeric characters or hyphens, starting with a letter")
	errHostRequired       = errors.New("host is required for an external PostgreSQL server")
	errPortInvalid        = errors.New("port must be a number between 1 and 65535")
	errBucketRequired     = errors.New("bucket is required for the s3 state backend")
	errEndpointRequired   = errors.New("endpoint is required for the s3 state backend")
	errRegionRequired     = errors.New("region is required for the s3 state backend")
	errInstanceCountRange = errors.New("instance count must be between 1 and 20")
)
