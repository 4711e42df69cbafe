// Package oracle defines the text-generation capability boundary consumed by
// the optimizer, plus an Anthropic-backed implementation of it.
//
// The boundary deliberately separates freeform text generation from
// structured-record generation: the post-processing differs (fence stripping,
// schema decoding, range validation) and mixing the two behind one call
// invites silent type confusion.
package oracle

import "context"

// Client is the oracle capability boundary. A failed call returns an error;
// callers decide whether the failure is fatal to their control flow. No
// implementation should panic across this boundary.
type Client interface {
	// GenerateText asks the oracle for freeform text. The instructions act
	// as the system prompt; the input is the user payload.
	GenerateText(ctx context.Context, model, instructions, input string) (string, error)

	// GenerateStructured asks the oracle for a structured record and decodes
	// it into out, which must be a pointer. Envelope noise such as
	// surrounding code fences is tolerated. Payloads that cannot be decoded,
	// or that fail out's validation tags, return an error. Values are never
	// silently coerced into range.
	GenerateStructured(ctx context.Context, model, instructions, input string, out any) error
}
