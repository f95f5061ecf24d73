package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubPutGetRoundTrip(t *testing.T) {
	stub := NewStubObjectStorage()
	ctx := context.Background()

	data := []byte("%PDF-1.4 fake receipt")
	require.NoError(t, stub.Put(ctx, "attachments/tx-1/beleg.pdf", "application/pdf", data))

	got, err := stub.Get(ctx, "attachments/tx-1/beleg.pdf")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 1, stub.Len())
}

func TestStubGetCopiesData(t *testing.T) {
	stub := NewStubObjectStorage()
	ctx := context.Background()

	data := []byte("original")
	require.NoError(t, stub.Put(ctx, "key", "text/plain", data))

	// Mutating the original or the returned slice must not change the store
	data[0] = 'X'
	got, err := stub.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := stub.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestStubGetMissing(t *testing.T) {
	stub := NewStubObjectStorage()

	_, err := stub.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestStubDelete(t *testing.T) {
	stub := NewStubObjectStorage()
	ctx := context.Background()

	require.NoError(t, stub.Put(ctx, "key", "text/plain", []byte("data")))
	require.NoError(t, stub.Delete(ctx, "key"))

	_, err := stub.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// Deleting again is a no-op
	assert.NoError(t, stub.Delete(ctx, "key"))
}

func TestStubRejectsEmptyKey(t *testing.T) {
	stub := NewStubObjectStorage()
	ctx := context.Background()

	assert.Error(t, stub.Put(ctx, "", "text/plain", []byte("data")))
	_, err := stub.Get(ctx, "")
	assert.Error(t, err)
	assert.Error(t, stub.Delete(ctx, ""))
}
