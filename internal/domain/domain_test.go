package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageCodes(t *testing.T) {
	assert.Equal(t, "en", English.Code())
	assert.Equal(t, "yo", Yoruba.Code())
	assert.Equal(t, "ig", Igbo.Code())
	assert.Equal(t, "ha", Hausa.Code())
	assert.Equal(t, "", Language("Klingon").Code())
	assert.False(t, Language("Hause").Valid())
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage("yoruba")
	require.NoError(t, err)
	assert.Equal(t, Yoruba, l)

	l, err = ParseLanguage("HA")
	require.NoError(t, err)
	assert.Equal(t, Hausa, l)

	_, err = ParseLanguage("french")
	assert.Error(t, err)
}

func TestLanguagesAllValid(t *testing.T) {
	langs := Languages()
	assert.Equal(t, []Language{English, Yoruba, Igbo, Hausa}, langs)
	for _, l := range langs {
		assert.True(t, l.Valid(), l)
		got, err := ParseLanguage(l.Code())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
}

func TestFilterMatchesAny(t *testing.T) {
	f := NewFilter("Lagos", []Language{Yoruba}, true, FilterAny)

	assert.True(t, f.Matches(Payload{Lang: "yo", Text: "Ibadan"}))
	assert.True(t, f.Matches(Payload{Lang: "en", Text: "Lagos is a city"}))
	assert.False(t, f.Matches(Payload{Lang: "en", Text: "Abuja"}))
}

func TestFilterMatchesAll(t *testing.T) {
	f := NewFilter("lagos", []Language{Yoruba, Igbo}, true, FilterAll)

	assert.True(t, f.Matches(Payload{Lang: "ig", Text: "Lagos is a city"}))
	assert.False(t, f.Matches(Payload{Lang: "yo", Text: "Ibadan"}))
	assert.False(t, f.Matches(Payload{Lang: "en", Text: "Lagos"}))
}

func TestFilterEmptyMatchesEverything(t *testing.T) {
	f := NewFilter("anything", nil, false, FilterAll)
	assert.True(t, f.Empty())
	assert.True(t, f.Matches(Payload{}))
}

func TestParseFilterMode(t *testing.T) {
	m, err := ParseFilterMode("")
	require.NoError(t, err)
	assert.Equal(t, FilterAny, m)

	m, err = ParseFilterMode("ALL")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, m)

	_, err = ParseFilterMode("some")
	assert.Error(t, err)
}

func TestKindForStatus(t *testing.T) {
	cases := map[int]ServiceKind{
		http.StatusUnauthorized:        KindAuth,
		http.StatusForbidden:           KindAuth,
		http.StatusTooManyRequests:     KindRateLimit,
		http.StatusGatewayTimeout:      KindTimeout,
		http.StatusBadGateway:          KindUnavailable,
		http.StatusBadRequest:          KindBadResponse,
		http.StatusUnprocessableEntity: KindBadResponse,
	}
	for status, want := range cases {
		assert.Equal(t, want, KindForStatus(status), "status %d", status)
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("search: %w", TransportError("qdrant", context.DeadlineExceeded))

	assert.True(t, IsKind(err, KindTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "qdrant", se.Service)
	assert.Contains(t, StatusError("cohere", 429, "").Error(), "rate_limit")
}
