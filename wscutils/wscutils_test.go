package wscutils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidation("noupper", func(s string) bool {
		for _, r := range s {
			if unicode.IsUpper(r) {
				return false
			}
		}
		return true
	}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type TestUser struct {
	Name   string `json:"name" validate:"required"`
	Handle string `json:"handle" validate:"omitempty,noupper"`
	Age    int    `json:"age" validate:"min=18,max=150"`
}

func TestSendErrorResponse(t *testing.T) {
	test := struct {
		name     string
		status   int
		response *Response
		expected string
	}{
		name:     "Error response",
		status:   http.StatusInternalServerError,
		response: NewErrorResponse(ErrTypeDatabase, "could not read customers"),
		expected: `{"status":"error","data":null,"messages":[{"type":"database_error","message":"could not read customers"}]}`,
	}

	t.Run(test.name, func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		SendErrorResponse(c, test.status, test.response)

		assert.Equal(t, test.status, w.Code)
		assert.JSONEq(t, test.expected, w.Body.String())
		assert.True(t, c.IsAborted())
	})
}

func TestSendSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendSuccessResponse(c, []string{"a", "b"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["a","b"]`, w.Body.String())
}

func TestNewLabelledErrorResponse(t *testing.T) {
	resp := NewLabelledErrorResponse(ErrTypeNotFound, "customer not found", "id")
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, ErrorStatus, resp.Status)
	label, ok := resp.Messages[0].Label.Get()
	assert.True(t, ok)
	assert.Equal(t, "id", label)
}

func TestWscValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   TestUser
		errMsgs []MapperMessage
	}{
		{
			name:    "Valid input",
			input:   TestUser{Name: "John Doe", Handle: "jdoe", Age: 18},
			errMsgs: nil,
		},
		{
			name:  "Missing name",
			input: TestUser{Age: 20},
			errMsgs: []MapperMessage{
				{Type: "any.required", Message: `"name" is required`, Label: NewOptional("name")},
			},
		},
		{
			name:  "Custom rule",
			input: TestUser{Name: "John Doe", Handle: "JDoe", Age: 20},
			errMsgs: []MapperMessage{
				{Type: "string.noupper", Message: `"handle" failed on the "noupper" rule`, Label: NewOptional("handle")},
			},
		},
		{
			name:  "Number below minimum",
			input: TestUser{Name: "John Doe", Age: 10},
			errMsgs: []MapperMessage{
				{Type: "number.min", Message: `"age" must be greater than or equal to 18`, Label: NewOptional("age")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errMsgs, WscValidate(tt.input))
		})
	}
}

func TestBindQuery(t *testing.T) {
	type query struct {
		Name  string `form:"name"`
		Limit int    `form:"limit"`
	}

	tests := []struct {
		name         string
		rawQuery     string
		wantErr      bool
		want         query
		expectedCode int
	}{
		{
			name:         "Both fields",
			rawQuery:     "name=Garcia&limit=2",
			want:         query{Name: "Garcia", Limit: 2},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Empty query",
			rawQuery:     "",
			want:         query{},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Non-numeric limit",
			rawQuery:     "limit=ten",
			wantErr:      true,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tc.rawQuery, nil)

			var got query
			err := BindQuery(c, &got)

			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, tc.expectedCode, w.Code)
				assert.Contains(t, w.Body.String(), `"type":"any.invalid"`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
