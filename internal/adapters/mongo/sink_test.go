package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bft-labs/thumbship/internal/domain"
)

func records(ids ...string) []domain.PersistableImage {
	out := make([]domain.PersistableImage, len(ids))
	for i, id := range ids {
		out[i] = domain.PersistableImage{ID: id, Index: i, Thumbnail: []byte{0x1}}
	}
	return out
}

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("mongodb://localhost:27017"))
	assert.True(t, IsURI("mongodb+srv://cluster.example.net"))
	assert.False(t, IsURI("postgres://localhost/db"))
}

func TestInsertResult_NoError(t *testing.T) {
	res, err := insertResult(records("a", "b", "c"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Empty(t, res.Failures)
}

func TestInsertResult_WriteErrors(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: "E11000 duplicate key error"}},
			{WriteError: mongo.WriteError{Index: 2, Code: 121, Message: "Document failed validation"}},
		},
	}

	res, err := insertResult(records("a", "b", "c", "d"), bwe)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 2)

	assert.Equal(t, "b", res.Failures[0].ID)
	assert.ErrorIs(t, res.Failures[0], domain.ErrDuplicateRecord)
	assert.ErrorIs(t, res.Failures[0], domain.ErrPersistRecord)

	assert.Equal(t, "c", res.Failures[1].ID)
	assert.Equal(t, 2, res.Failures[1].Index)
	assert.ErrorIs(t, res.Failures[1], domain.ErrPersistRecord)
	assert.NotErrorIs(t, res.Failures[1], domain.ErrDuplicateRecord)
}

func TestInsertResult_WriteConcernFailsCall(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteConcernError: &mongo.WriteConcernError{Code: 64, Message: "waiting for replication timed out"},
	}

	res, err := insertResult(records("a", "b"), bwe)
	var target mongo.BulkWriteException
	require.ErrorAs(t, err, &target)
	assert.NotNil(t, target.WriteConcernError)
	assert.Equal(t, 2, res.Inserted)
	assert.Empty(t, res.Failures)
}

func TestInsertResult_WriteConcernKeepsWriteErrors(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: "E11000 duplicate key error"}},
		},
		WriteConcernError: &mongo.WriteConcernError{Code: 64, Message: "waiting for replication timed out"},
	}

	res, err := insertResult(records("a", "b", "c"), bwe)
	require.Error(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "b", res.Failures[0].ID)
	assert.ErrorIs(t, res.Failures[0], domain.ErrDuplicateRecord)
}

func TestInsertResult_EmptyBulkWriteExceptionFailsCall(t *testing.T) {
	res, err := insertResult(records("a"), mongo.BulkWriteException{})
	require.Error(t, err)
	assert.Equal(t, domain.InsertResult{}, res)
}

func TestInsertResult_OtherErrorFailsCall(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := insertResult(records("a"), boom)
	assert.ErrorIs(t, err, boom)
}

func TestSink_NotOpen(t *testing.T) {
	s := NewSink("mongodb://localhost:1", "thumbship", "images")

	_, err := s.BulkInsert(context.Background(), records("a"))
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, s.Close(context.Background()))
}
