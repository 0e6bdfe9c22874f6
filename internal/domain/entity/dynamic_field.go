package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FieldType is the declared type of a dynamic field. Exactly one value
// column matching the type is populated; the rest stay null.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeJSON    FieldType = "json"
)

// IsValid checks if the field type is known
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeJSON:
		return true
	}
	return false
}

// DynamicField is a single typed attribute attached to one entity. Values
// are superseded on upsert, not versioned.
type DynamicField struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	EntityID       uuid.UUID
	FieldName      string
	FieldType      FieldType
	SmartCode      string
	ValueText      *string
	ValueNumber    *decimal.Decimal
	ValueBoolean   *bool
	ValueDate      *time.Time
	ValueJSON      shared.JSONMap
}

// FieldValue is a tagged value used to set a dynamic field. Use the typed
// constructors; a mismatched or empty value is rejected as
// FIELD_TYPE_MISMATCH.
type FieldValue struct {
	Type    FieldType
	Text    *string
	Number  *decimal.Decimal
	Boolean *bool
	Date    *time.Time
	JSON    shared.JSONMap
}

// TextValue builds a text field value
func TextValue(s string) FieldValue {
	return FieldValue{Type: FieldTypeText, Text: &s}
}

// NumberValue builds a number field value
func NumberValue(d decimal.Decimal) FieldValue {
	return FieldValue{Type: FieldTypeNumber, Number: &d}
}

// BooleanValue builds a boolean field value
func BooleanValue(b bool) FieldValue {
	return FieldValue{Type: FieldTypeBoolean, Boolean: &b}
}

// DateValue builds a date field value
func DateValue(t time.Time) FieldValue {
	return FieldValue{Type: FieldTypeDate, Date: &t}
}

// JSONValue builds a json field value
func JSONValue(m shared.JSONMap) FieldValue {
	return FieldValue{Type: FieldTypeJSON, JSON: m}
}

// validate checks the populated column matches the declared type
func (v FieldValue) validate() error {
	if !v.Type.IsValid() {
		return shared.NewValidationError(shared.ErrFieldTypeMismatch.Code, "Unknown field type")
	}

	populated := 0
	if v.Text != nil {
		populated++
	}
	if v.Number != nil {
		populated++
	}
	if v.Boolean != nil {
		populated++
	}
	if v.Date != nil {
		populated++
	}
	if v.JSON != nil {
		populated++
	}
	if populated != 1 {
		return shared.NewValidationError(shared.ErrFieldTypeMismatch.Code, "Exactly one value column must be populated")
	}

	match := false
	switch v.Type {
	case FieldTypeText:
		match = v.Text != nil
	case FieldTypeNumber:
		match = v.Number != nil
	case FieldTypeBoolean:
		match = v.Boolean != nil
	case FieldTypeDate:
		match = v.Date != nil
	case FieldTypeJSON:
		match = v.JSON != nil
	}
	if !match {
		return shared.NewValidationError(shared.ErrFieldTypeMismatch.Code, "Value does not match the declared field type")
	}
	return nil
}

// NewDynamicField creates a dynamic field for an entity
func NewDynamicField(organizationID, entityID uuid.UUID, fieldName, smartCode string, value FieldValue) (*DynamicField, error) {
	if organizationID == uuid.Nil {
		return nil, shared.ErrMissingOrganizationID
	}
	if entityID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ENTITY_ID", "Entity ID cannot be empty")
	}
	if fieldName == "" {
		return nil, shared.NewValidationError("INVALID_FIELD_NAME", "Field name cannot be empty")
	}
	if err := value.validate(); err != nil {
		return nil, err
	}

	return &DynamicField{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		EntityID:       entityID,
		FieldName:      fieldName,
		FieldType:      value.Type,
		SmartCode:      smartCode,
		ValueText:      value.Text,
		ValueNumber:    value.Number,
		ValueBoolean:   value.Boolean,
		ValueDate:      value.Date,
		ValueJSON:      value.JSON,
	}, nil
}

// Supersede overwrites the stored value with a new one of any type
func (f *DynamicField) Supersede(value FieldValue) error {
	if err := value.validate(); err != nil {
		return err
	}
	f.FieldType = value.Type
	f.ValueText = value.Text
	f.ValueNumber = value.Number
	f.ValueBoolean = value.Boolean
	f.ValueDate = value.Date
	f.ValueJSON = value.JSON
	f.Touch()
	return nil
}
