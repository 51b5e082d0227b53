package cache

import "fmt"

// ConfigurationError reports an invalid policy parameter. Field names the
// offending parameter in its wire form (e.g. "clean_size").
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownPolicyError reports a policy name that matches none of the
// supported policies.
type UnknownPolicyError struct {
	Name string
}

func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown policy: %q", e.Name)
}
