package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mls-workflow/cadastro-api/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestStruct_CreateRequest(t *testing.T) {
	err := Struct(types.CreateRequest{Name: "Jane", Email: "jane@example.com", Age: ptr(0)})
	require.NoError(t, err)

	err = Struct(types.CreateRequest{Email: "bad"})
	require.Error(t, err)

	msgs := Messages(err)
	assert.Equal(t, "field name is required", msgs["name"])
	assert.Equal(t, "field email must be a valid email address", msgs["email"])
	assert.Equal(t, "field age is required", msgs["age"])

	msgs = Messages(Struct(types.CreateRequest{Name: "   ", Email: " \t", Age: ptr(3)}))
	assert.Equal(t, "field name must not be blank", msgs["name"])
	assert.Equal(t, "field email must not be blank", msgs["email"])

	msgs = Messages(Struct(types.CreateRequest{Name: "J", Email: "j@example.com", Age: ptr(-3)}))
	assert.Equal(t, "field age must not be negative", msgs["age"])
}

func TestStruct_UpdateRequest(t *testing.T) {
	require.NoError(t, Struct(types.UpdateRequest{Payload: types.Payload{Age: ptr(26)}}))

	msgs := Messages(Struct(types.UpdateRequest{}))
	assert.Contains(t, msgs["payload"], "at least one")

	msgs = Messages(Struct(types.UpdateRequest{Payload: types.Payload{Name: ptr("")}}))
	assert.Equal(t, "field name must not be blank", msgs["name"])
	assert.Contains(t, msgs, "payload")

	msgs = Messages(Struct(types.UpdateRequest{Payload: types.Payload{Name: ptr("  "), Age: ptr(3)}}))
	assert.Equal(t, "field name must not be blank", msgs["name"])
	assert.NotContains(t, msgs, "payload")

	msgs = Messages(Struct(types.UpdateRequest{Payload: types.Payload{Email: ptr("nope")}}))
	assert.Contains(t, msgs, "email")
	assert.NotContains(t, msgs, "payload")
}

func TestProcess(t *testing.T) {
	id := int64(3)
	full := &types.Payload{Name: ptr("a"), Email: ptr("a@example.com"), Age: ptr(1)}

	assert.Empty(t, Process(types.ProcessRequest{Operation: "create", Payload: full}))
	assert.Empty(t, Process(types.ProcessRequest{Operation: "READ", ID: &id}))
	assert.Empty(t, Process(types.ProcessRequest{Operation: "upsert"}))

	errs := Process(types.ProcessRequest{Operation: " Update "})
	assert.Equal(t, "id is required for UPDATE operations", errs["id"])
	assert.Equal(t, "payload is required for UPDATE operations", errs["payload"])

	errs = Process(types.ProcessRequest{Operation: "DELETE"})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "id")

	errs = Process(types.ProcessRequest{Operation: "CREATE", Payload: &types.Payload{Email: ptr("x")}})
	assert.Contains(t, errs, "payload.email")

	errs = Process(types.ProcessRequest{Operation: "create", Payload: &types.Payload{Name: ptr("x")}})
	assert.Equal(t, map[string]string{
		"payload.email": "field email is required",
		"payload.age":   "field age is required",
	}, errs)

	errs = Process(types.ProcessRequest{Operation: "CREATE", Payload: &types.Payload{
		Name: ptr("  "), Email: ptr("a@example.com"), Age: ptr(1),
	}})
	assert.Equal(t, map[string]string{"payload.name": "field name must not be blank"}, errs)

	assert.Empty(t, Process(types.ProcessRequest{Operation: "UPDATE", ID: &id, Payload: &types.Payload{Age: ptr(4)}}))
}

func TestMessages_NonValidationError(t *testing.T) {
	msgs := Messages(errors.New("boom"))
	assert.Equal(t, map[string]string{"": "boom"}, msgs)
}
