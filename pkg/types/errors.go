package types

import (
	"github.com/cockroachdb/errors"

	"github.com/Neopallium/sub-script/pkg/codec"
)

// Errors returned by the registry and the codec engine. Returned errors wrap one of
// these with context; test for them with errors.Is.
var (
	// ErrSchemaParse reports malformed schema JSON or type expression text.
	ErrSchemaParse = errors.New("schema parse error")
	// ErrUnresolvedType reports an encode or decode on a type never given a shape.
	ErrUnresolvedType = errors.New("unresolved type")
	// ErrShapeMismatch reports a host value that does not fit the descriptor.
	ErrShapeMismatch = errors.New("encode shape mismatch")
	// ErrTruncated reports input that ended before the value did.
	ErrTruncated = codec.ErrTruncated
	// ErrUnknownVariant reports an enum tag with no matching variant.
	ErrUnknownVariant = errors.New("unknown enum variant")
	// ErrRedefinition reports a rejected redefinition of a resolved type name.
	ErrRedefinition = errors.New("type redefinition")
	// ErrInvalidData reports decoded bytes that are not a valid value, such as non UTF-8 text.
	ErrInvalidData = errors.New("invalid data")
	// ErrRecursionLimit reports a type graph nested deeper than the engine will follow.
	ErrRecursionLimit = errors.New("type recursion limit exceeded")
)

// UnknownVariant is returned in place of an enum value when the lenient variant
// policy meets a tag with no matching variant. The variant payload is not consumed.
type UnknownVariant struct {
	Index uint8 `json:"unknown_variant"`
}
