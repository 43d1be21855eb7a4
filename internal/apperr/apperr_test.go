package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("append entry: %w", Persistence("write entries", base))

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, Is(err, KindPersistence))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("submit", "content is required")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(External("chat", errors.New("quota"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "submit: content is required", Validation("submit", "content is required").Error())
	assert.Equal(t, "chat: quota", External("chat", errors.New("quota")).Error())
}
