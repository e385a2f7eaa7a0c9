package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"last-snow/internal/language"
)

type submitted struct{ lang, text string }

type fakeSubmitter struct {
	got    []submitted
	reject string
}

func (f *fakeSubmitter) Validate(text string) error {
	if text == f.reject {
		return errors.New("rejected")
	}
	return nil
}

func (f *fakeSubmitter) Submit(ctx context.Context, lang, text string) error {
	f.got = append(f.got, submitted{lang, text})
	return nil
}

func TestConsoleSubmitsLinesAndSwitchesLanguage(t *testing.T) {
	fs := &fakeSubmitter{reject: "bad"}
	out := &bytes.Buffer{}
	c := &console{submitter: fs, logger: zap.NewNop(), lang: language.Default, out: out}

	in := strings.NewReader("Hello\n:lang es\nHola\nbad\n:lang xx\nAdiós\n")
	require.NoError(t, c.run(context.Background(), in))

	assert.Equal(t, []submitted{{"en", "Hello"}, {"es", "Hola"}, {"es", "Adiós"}}, fs.got)
	assert.Contains(t, out.String(), "language: ES (xkb:es::spa)")
	assert.Contains(t, out.String(), "rejected")
	assert.Contains(t, out.String(), `unknown language "xx"`)
}

func TestConsoleStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &console{submitter: &fakeSubmitter{}, logger: zap.NewNop(), lang: language.Default, out: &bytes.Buffer{}}
	assert.NoError(t, c.run(ctx, strings.NewReader("")))
}

func TestConsoleLogsInputError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	fs := &fakeSubmitter{}
	c := &console{submitter: fs, logger: zap.New(core), lang: language.Default, out: &bytes.Buffer{}}

	in := strings.NewReader("first\n" + strings.Repeat("x", 70*1024) + "\n")
	require.NoError(t, c.run(context.Background(), in))

	assert.Equal(t, []submitted{{"en", "first"}}, fs.got)
	entries := logs.FilterMessage("console input stopped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, bufio.ErrTooLong.Error(), entries[0].ContextMap()["error"])
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("/max_sentences_per_csv", []string{"50"}, false)
	assert.Equal(t, []any{int32(50)}, msg.Args)

	msg = buildMessage("/td_osc_address", []string{"10.0.0.1:7002"}, false)
	assert.Equal(t, []any{"10.0.0.1:7002"}, msg.Args)

	msg = buildMessage("/remove_output_csv", []string{"3"}, true)
	assert.Equal(t, []any{"3"}, msg.Args)

	msg = buildMessage("/x", []string{"99999999999"}, false)
	assert.Equal(t, []any{"99999999999"}, msg.Args, "out of int32 range stays a string")

	msg = buildMessage("/remove_all_csv", nil, false)
	assert.Empty(t, msg.Args)
}
