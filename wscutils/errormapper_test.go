package wscutils

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		item      ValidationErrorItem
		wantLabel Optional[string]
	}{
		{
			name:      "No context",
			item:      ValidationErrorItem{Type: "string.max", Message: "too long"},
			wantLabel: NewOptionalAbsent[string](),
		},
		{
			name:      "Context without label",
			item:      ValidationErrorItem{Type: "string.max", Message: "too long", Context: &ItemContext{}},
			wantLabel: NewOptionalAbsent[string](),
		},
		{
			name:      "Context with label",
			item:      ValidationErrorItem{Type: "string.max", Message: "too long", Context: &ItemContext{Label: NewOptional("name")}},
			wantLabel: NewOptional("name"),
		},
		{
			name:      "Empty label is kept",
			item:      ValidationErrorItem{Type: "any.required", Message: "missing", Context: &ItemContext{Label: NewOptional("")}},
			wantLabel: NewOptional(""),
		},
		{
			name:      "Missing type and message pass through",
			item:      ValidationErrorItem{Context: &ItemContext{Label: NewOptional("x")}},
			wantLabel: NewOptional("x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.item)
			assert.Equal(t, tt.item.Type, got.Type)
			assert.Equal(t, tt.item.Message, got.Message)
			assert.Equal(t, tt.wantLabel, got.Label)
			// Same input, same output.
			assert.Equal(t, got, Render(tt.item))
		})
	}
}

func TestRenderMany(t *testing.T) {
	items := []ValidationErrorItem{
		{Type: "a", Message: "first", Context: &ItemContext{Label: NewOptional("one")}},
		{Type: "b", Message: "second"},
		{Type: "c", Message: "third", Context: &ItemContext{}},
	}

	got := RenderMany(items)
	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, Render(items[i]), got[i], "index %d", i)
	}

	empty := RenderMany(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMapperMessageJSON(t *testing.T) {
	tests := []struct {
		name     string
		msg      MapperMessage
		expected string
	}{
		{
			name:     "Label absent is omitted",
			msg:      Render(ValidationErrorItem{Type: "any.invalid", Message: "bad"}),
			expected: `{"type":"any.invalid","message":"bad"}`,
		},
		{
			name:     "Label present",
			msg:      Render(ValidationErrorItem{Type: "string.max", Message: "long", Context: &ItemContext{Label: NewOptional("name")}}),
			expected: `{"type":"string.max","message":"long","label":"name"}`,
		},
		{
			name:     "Empty label is not dropped",
			msg:      Render(ValidationErrorItem{Type: "t", Message: "m", Context: &ItemContext{Label: NewOptional("")}}),
			expected: `{"type":"t","message":"m","label":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

type searchQuery struct {
	Name   string `form:"name" validate:"omitempty,max=5"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=10"`
	Status string `json:"status" validate:"required,oneof=on off"`
	ID     string `uri:"id" validate:"omitempty,uuid"`
}

func TestItemsFromValidator(t *testing.T) {
	err := validator.New().Struct(searchQuery{Status: "on"})
	assert.NoError(t, err)
	assert.Nil(t, ItemsFromValidator(nil))

	err = validate.Struct(searchQuery{Name: "toolongname", Limit: 50, ID: "nope"})
	require.Error(t, err)

	items := ItemsFromValidator(err)
	require.Len(t, items, 4)

	byLabel := map[string]ValidationErrorItem{}
	for _, item := range items {
		require.NotNil(t, item.Context)
		label, ok := item.Context.Label.Get()
		require.True(t, ok)
		byLabel[label] = item
	}

	assert.Equal(t, "string.max", byLabel["name"].Type)
	assert.Equal(t, `"name" length must be less than or equal to 5 characters long`, byLabel["name"].Message)
	assert.Equal(t, "number.max", byLabel["limit"].Type)
	assert.Equal(t, `"limit" must be less than or equal to 10`, byLabel["limit"].Message)
	assert.Equal(t, ErrTypeRequired, byLabel["status"].Type)
	assert.Equal(t, "string.guid", byLabel["id"].Type)
}

func TestItemsFromValidatorForeignError(t *testing.T) {
	items := ItemsFromValidator(errors.New(`strconv.ParseInt: parsing "x": invalid syntax`))
	require.Len(t, items, 1)
	assert.Equal(t, ErrTypeInvalid, items[0].Type)
	assert.Nil(t, items[0].Context)

	msgs := RenderMany(items)
	assert.False(t, msgs[0].Label.Present)
}
