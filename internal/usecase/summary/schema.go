package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"
)

// FieldError describes a single failing field in a payload.
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every failing field of a payload. It is
// returned to the caller verbatim when AI output fails the strict
// shape check.
type ValidationError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Reason))
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// WithMessage returns a copy of the error with its top-level message
// replaced; field details are preserved.
func (e *ValidationError) WithMessage(msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: e.Fields}
}

// SchemaValidator enforces the two structural contracts of the
// pipeline: the inbound request shape and the AI-produced metadata
// shape (strict and partial variants). It is a pure checker; no state
// and no side effects.
type SchemaValidator struct {
	v *validator.Validate
}

// NewSchemaValidator creates the validator shared by both checkpoints.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{v: pkgvalidator.NewValidate()}
}

// ValidateRequest checks the inbound webhook payload. A nil return
// means the request satisfies the shape.
func (s *SchemaValidator) ValidateRequest(req *entities.SummaryRequest) *ValidationError {
	if req == nil {
		return &ValidationError{Message: "request validation failed", Fields: []FieldError{{Path: "$", Reason: "missing body"}}}
	}
	if err := s.v.Struct(req); err != nil {
		return &ValidationError{
			Message: "request validation failed",
			Fields:  s.fieldErrors(err),
		}
	}
	return nil
}

// ValidateStrictMetadata parses raw AI output and checks it against
// the strict metadata shape: every top-level field present, every
// leaf constraint satisfied. Presence is checked on the raw JSON
// before the typed unmarshal, since a missing number and a zero are
// indistinguishable afterwards.
func (s *SchemaValidator) ValidateStrictMetadata(raw []byte) (*entities.MeetingMetadata, *ValidationError) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, jsonError(err)
	}

	var fields []FieldError
	for _, name := range entities.MetadataFieldNames {
		if _, ok := top[name]; !ok {
			fields = append(fields, FieldError{Path: name, Reason: "missing"})
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "metadata validation failed", Fields: fields}
	}

	var meta entities.MeetingMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, jsonError(err)
	}

	if err := s.v.Struct(&meta); err != nil {
		return nil, &ValidationError{
			Message: "metadata validation failed",
			Fields:  s.fieldErrors(err),
		}
	}
	return &meta, nil
}

// ValidatePartialMetadata parses a partial metadata payload: every
// top-level field optional, but a present field must satisfy the same
// inner constraints as the strict shape.
func (s *SchemaValidator) ValidatePartialMetadata(raw []byte) (*entities.MeetingMetadataPatch, *ValidationError) {
	var patch entities.MeetingMetadataPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, jsonError(err)
	}

	if err := s.v.Struct(&patch); err != nil {
		return nil, &ValidationError{
			Message: "metadata validation failed",
			Fields:  s.fieldErrors(err),
		}
	}
	return &patch, nil
}

// fieldErrors translates validator errors into field path/reason pairs.
func (s *SchemaValidator) fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Path: "$", Reason: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Path:   trimNamespace(fe.Namespace()),
			Reason: reasonFor(fe),
		})
	}
	return fields
}

// trimNamespace drops the leading struct name from a validator
// namespace, leaving the JSON field path.
func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return ns
}

// reasonFor maps a validator tag to a human-readable reason.
func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing or empty"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed constraint %q", fe.Tag())
	}
}

// jsonError converts an encoding/json failure into a ValidationError.
func jsonError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			path = "$"
		}
		return &ValidationError{
			Message: "metadata validation failed",
			Fields: []FieldError{{
				Path:   path,
				Reason: fmt.Sprintf("wrong type: expected %s, got %s", typeErr.Type.Kind(), typeErr.Value),
			}},
		}
	}
	return &ValidationError{
		Message: "metadata validation failed",
		Fields:  []FieldError{{Path: "$", Reason: fmt.Sprintf("invalid JSON: %v", err)}},
	}
}
