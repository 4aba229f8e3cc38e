package types

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// RedefinePolicy selects what Insert does when a name already has a resolved definition
type RedefinePolicy int

const (
	// RedefineKeep logs the conflict and keeps the existing definition.
	RedefineKeep RedefinePolicy = iota
	// RedefineOverwrite logs the conflict and re-points the existing handle.
	RedefineOverwrite
	// RedefineReject returns ErrRedefinition.
	RedefineReject
)

func (p RedefinePolicy) String() string {
	switch p {
	case RedefineKeep:
		return "keep"
	case RedefineOverwrite:
		return "overwrite"
	case RedefineReject:
		return "reject"
	}
	return "unknown"
}

// ParseRedefinePolicy parses "keep", "overwrite" or "reject"
func ParseRedefinePolicy(s string) (RedefinePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return RedefineKeep, nil
	case "overwrite":
		return RedefineOverwrite, nil
	case "reject", "strict":
		return RedefineReject, nil
	}
	return RedefineKeep, errors.Newf("unknown redefine policy %q", s)
}

// VariantPolicy selects what decode does with an enum tag that has no variant
type VariantPolicy int

const (
	// VariantStrict fails the decode with ErrUnknownVariant.
	VariantStrict VariantPolicy = iota
	// VariantLenient logs and yields UnknownVariant without reading a payload.
	VariantLenient
)

func (p VariantPolicy) String() string {
	switch p {
	case VariantStrict:
		return "strict"
	case VariantLenient:
		return "lenient"
	}
	return "unknown"
}

// ParseVariantPolicy parses "strict" or "lenient"
func ParseVariantPolicy(s string) (VariantPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return VariantStrict, nil
	case "lenient":
		return VariantLenient, nil
	}
	return VariantStrict, errors.Newf("unknown variant policy %q", s)
}

// options are shared by a registry and every handle it creates
type options struct {
	log      *zap.Logger
	redefine RedefinePolicy
	variant  VariantPolicy
	maxDepth int
}

// defaultMaxDepth bounds the handle dereferences of one encode or decode call tree.
const defaultMaxDepth = 4096

var defaultOpts = &options{
	log:      zap.NewNop(),
	redefine: RedefineKeep,
	variant:  VariantStrict,
	maxDepth: defaultMaxDepth,
}

// RegistryOption configures a Registry or Lookup
type RegistryOption func(*options)

// WithLogger sets the logger used for debug tracing and conflict warnings
func WithLogger(log *zap.Logger) RegistryOption {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRedefinePolicy sets the redefinition policy
func WithRedefinePolicy(p RedefinePolicy) RegistryOption {
	return func(o *options) { o.redefine = p }
}

// WithVariantPolicy sets the unknown enum tag policy
func WithVariantPolicy(p VariantPolicy) RegistryOption {
	return func(o *options) { o.variant = p }
}

// WithMaxDepth bounds recursion through the type graph
func WithMaxDepth(depth int) RegistryOption {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

func newOptions(opts []RegistryOption) *options {
	o := *defaultOpts
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}
