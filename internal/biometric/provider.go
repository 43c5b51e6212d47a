// Package biometric abstracts the platform biometric capability: hardware
// and enrollment reporting plus the authentication prompt. The session
// subsystem only consumes this interface; it never inspects biometric data
// itself.
package biometric

import "context"

// Capabilities reports what the device can do.
type Capabilities struct {
	HasHardware    bool
	IsEnrolled     bool
	SupportedTypes []string
}

// Available reports whether a biometric prompt can succeed at all.
func (c Capabilities) Available() bool {
	return c.HasHardware && c.IsEnrolled
}

// Provider performs the platform biometric interaction.
//
// Prompt returns nil on a successful authentication,
// common.ErrPromptDismissed when the user backs out, and any other error
// for platform failures. Prompt performs no session mutation.
type Provider interface {
	Capabilities(ctx context.Context) (Capabilities, error)
	Prompt(ctx context.Context, message string) error
}
