package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

func TestRequestServiceSubmitAndList(t *testing.T) {
	svc := NewRequestService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitRequest{StudentName: "Lina", SubjectID: "databases", Comments: "Chapter 3 please"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, first.Status)
	_, err = svc.Submit(ctx, SubmitRequest{StudentName: "Omar", SubjectID: "unknown-subject"})
	require.NoError(t, err)

	oldest, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, oldest, 2)
	assert.Equal(t, "Lina", oldest[0].StudentName)

	newest, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "Omar", newest[0].StudentName)
}

func TestRequestServiceSubmitValidation(t *testing.T) {
	svc := NewRequestService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{StudentName: "  ", SubjectID: "databases"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
