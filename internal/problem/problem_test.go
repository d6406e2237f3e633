package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/order/CM00001", nil)
	w := httptest.NewRecorder()

	Write(w, r, NotFound.WithDetail("order CM00001 not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ContentType, w.Header().Get("Content-Type"))

	var got Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NotFound", got.Code)
	assert.Equal(t, "/order/CM00001", got.Instance)
	assert.Equal(t, "order CM00001 not found", got.Detail)
}

func TestWithExtension_DoesNotShareMaps(t *testing.T) {
	base := BadRequest.WithExtension("a", 1)
	derived := base.WithExtension("b", 2)

	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
	assert.Nil(t, BadRequest.Extensions)
}

func TestDetail_Error(t *testing.T) {
	assert.Equal(t, "Forbidden", Forbidden.Error())
	assert.Equal(t, "Bad Request: nope", BadRequest.WithDetail("nope").Error())
}
