package services

import (
	"errors"
	"fmt"
	"testing"

	"labquote/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, ErrConflict},
		{"sequence exhausted", repository.ErrSequenceExhausted, ErrConflict},
		{"bad user code", repository.ErrInvalidUserCode, ErrValidation},
		{"negative year", fmt.Errorf("%w: -5", repository.ErrInvalidYear), ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err, "quotation number"), tt.want)
		})
	}

	err := translate(repository.ErrSequenceExhausted, "quotation number")
	assert.ErrorIs(t, err, repository.ErrSequenceExhausted, "cause stays reachable")
	assert.Nil(t, translate(nil, "quotation"))

	other := errors.New("connection reset")
	assert.ErrorIs(t, translate(other, "quotation"), other)
}
