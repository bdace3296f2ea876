package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	err := fmt.Errorf("load product: %w", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestNewBaseEntity(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := NewBaseEntity(now)
	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, now, e.UpdatedAt)
}
