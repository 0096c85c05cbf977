// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "failed to query device",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "command": "show ip arp",
//	        "device": host,
//	    },
//	)
//
// Codes survive wrapping with fmt.Errorf("...: %w", err) and are mapped to
// HTTP statuses by HTTPStatus.
package errors
