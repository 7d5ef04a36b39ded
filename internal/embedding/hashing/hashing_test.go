package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func dot(a, b []float32) float64 {
	s := 0.0
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbed_DeterministicAndNormalized(t *testing.T) {
	e := NewEmbedder(64)
	ctx := context.Background()
	text := "Argo float 5906142 profile taken on 2024-01-01"

	a, err := e.Embed(ctx, []string{text, text})
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.Equal(t, a[0], a[1])
	assert.Len(t, a[0], 64)
	assert.InDelta(t, 1.0, norm(a[0]), 1e-5)

	b, err := NewEmbedder(64).Embed(ctx, []string{text})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestEmbed_SharedTokensAreCloser(t *testing.T) {
	e := NewEmbedder(DefaultDimension)
	vecs, err := e.Embed(context.Background(), []string{
		"temperature readings for float 5906142",
		"Argo float 5906142 profile with temperature of 28.10°C",
		"Argo float 2902746 profile with salinity of 35.10 PSU",
	})
	require.NoError(t, err)
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}

func TestEmbed_StopwordsOnlyIsZeroVector(t *testing.T) {
	vecs, err := NewEmbedder(16).Embed(context.Background(), []string{"the and of"})
	require.NoError(t, err)
	assert.Zero(t, norm(vecs[0]))
}

func TestEmbed_Errors(t *testing.T) {
	e := NewEmbedder(0)
	assert.Equal(t, DefaultDimension, e.Dimension())
	assert.Equal(t, "hashing", e.Name())

	_, err := e.Embed(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
