package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/transcription"
)

func newService(t *testing.T) *transcription.Service {
	t.Helper()
	langs, err := language.Default()
	require.NoError(t, err)
	return transcription.NewService(hangulize.New(), langs, nil, slog.New(slog.DiscardHandler))
}

func TestRunArgs(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newService(t), options{lang: "ita"}, []string{"Giuseppe", "Verdi"}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "주세페 베르디\n", out.String())
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Roma\n\nMilano\n")
	err := run(context.Background(), newService(t), options{lang: "ita", romanize: true}, nil, in, &out)
	require.NoError(t, err)
	assert.Equal(t, "로마\troma\n\n밀라노\tmilrano\n", out.String())
}

func TestRunTrace(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newService(t), options{lang: "ita", trace: true}, []string{"Roma"}, nil, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "로마", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  "))
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newService(t), options{list: true}, nil, nil, &out))
	assert.Contains(t, out.String(), "ita")
	assert.Contains(t, out.String(), "Italian")
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), newService(t), options{}, []string{"Roma"}, nil, &out)
	assert.ErrorContains(t, err, "lang is required")

	err = run(context.Background(), newService(t), options{lang: "xxx"}, []string{"Roma"}, nil, &out)
	assert.ErrorIs(t, err, language.ErrUnknownLanguage)
}
