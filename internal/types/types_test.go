package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexListAcceptsSingleValue(t *testing.T) {
	var payload struct {
		Tags FlexList[FlexUint64] `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags": "7"}`), &payload))
	assert.Equal(t, FlexList[FlexUint64]{7}, payload.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags": [1, "2"]}`), &payload))
	assert.Equal(t, FlexList[FlexUint64]{1, 2}, payload.Tags)
}

func TestFlexListDistinguishesEmptyFromOmitted(t *testing.T) {
	var omitted, null, empty struct {
		Tags *FlexList[FlexUint64] `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &omitted))
	require.NoError(t, json.Unmarshal([]byte(`{"tags": null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"tags": []}`), &empty))

	assert.Nil(t, omitted.Tags)
	assert.Nil(t, null.Tags)
	require.NotNil(t, empty.Tags)
	assert.Empty(t, *empty.Tags)

	var value struct {
		Tags FlexList[FlexUint64] `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags": null}`), &value))
	assert.NotNil(t, value.Tags)
	assert.Empty(t, value.Tags)
}

func TestDuplicates(t *testing.T) {
	assert.Equal(t, []uint64{2, 3}, Duplicates([]uint64{1, 2, 2, 3, 2, 3}))
	assert.Nil(t, Duplicates([]uint64{1, 2, 3}))
}

func TestFlexUint64RejectsGarbage(t *testing.T) {
	var v FlexUint64
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))

	_, err := ParseFlexUint64("-1")
	assert.Error(t, err)
}

func TestCustomErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("favorites.conflict", "recipe %d already added", 3))

	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindNotFound))

	var ce *CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadRequest, ce.Code)
	assert.Equal(t, "recipe 3 already added", ce.Message)

	detailed := NotFound("recipes.not_found", "missing").With("ids", []uint64{4})
	assert.Equal(t, http.StatusNotFound, detailed.Code)
	assert.Equal(t, []uint64{4}, detailed.Details["ids"])
}
