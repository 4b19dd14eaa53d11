package errors

import "fmt"

// SignatureError reports a handler whose declared shape cannot be turned into a route
type SignatureError struct {
	*BaseError
	Route  string // route in "METHOD /path" form
	Reason string // what was wrong with the signature
}

// NewSignatureError creates a new signature error for the given route
func NewSignatureError(route, reason string) *SignatureError {
	return &SignatureError{
		BaseError: New(SignatureErrorCode, fmt.Sprintf("invalid handler for %s: %s", route, reason)).
			WithContext("route", route),
		Route:  route,
		Reason: reason,
	}
}

// WithSuggestion adds a helpful suggestion
func (e *SignatureError) WithSuggestion(suggestion string) *SignatureError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// WithCause adds an underlying error cause
func (e *SignatureError) WithCause(cause error) *SignatureError {
	e.BaseError.WithCause(cause)
	return e
}

// CollisionError reports two routes that derive the same client file name
type CollisionError struct {
	*BaseError
	FileName string
	Existing string // route already holding the file name
	Incoming string // route that tried to claim it
}

// NewCollisionError creates a new file-name collision error
func NewCollisionError(fileName, existing, incoming string) *CollisionError {
	message := fmt.Sprintf("routes %s and %s both generate client module %q", existing, incoming, fileName)
	return &CollisionError{
		BaseError: New(CollisionErrorCode, message).
			WithContext("file_name", fileName).
			WithSuggestion("Rename one of the paths or register them under distinct path segments"),
		FileName: fileName,
		Existing: existing,
		Incoming: incoming,
	}
}

// SyntaxError represents a parse error in a declared type expression
type SyntaxError struct {
	*BaseError
	Input    string // the expression being parsed
	Position int    // byte offset where the error occurred
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// WithInput sets the expression being parsed
func (e *SyntaxError) WithInput(input string) *SyntaxError {
	e.Input = input
	e.BaseError.WithContext("input", input)
	return e
}

// WithPosition sets the position where the error occurred
func (e *SyntaxError) WithPosition(position int) *SyntaxError {
	e.Position = position
	return e
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// BindingError reports a request that could not be decoded into a handler parameter
type BindingError struct {
	*BaseError
	Channel string // body, path, query, form
}

// NewBindingError wraps a decode failure for the given channel
func NewBindingError(channel string, cause error) *BindingError {
	return &BindingError{
		BaseError: Wrap(BindingErrorCode, fmt.Sprintf("invalid %s", channel), cause),
		Channel:   channel,
	}
}
