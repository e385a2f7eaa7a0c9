package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"last-snow/internal/language"
)

const langPrefix = ":lang "

type sentenceSubmitter interface {
	Validate(text string) error
	Submit(ctx context.Context, language, text string) error
}

// console stands in for the kiosk screen: one line, one sentence.
type console struct {
	submitter sentenceSubmitter
	logger    *zap.Logger
	lang      language.Language
	out       io.Writer
}

// run reads lines until in is exhausted or ctx is done. The scanning
// goroutine may outlive run while blocked on a read.
func (c *console) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			c.logger.Error("console input stopped", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.handle(ctx, line)
		}
	}
}

func (c *console) handle(ctx context.Context, line string) {
	if code, ok := strings.CutPrefix(line, langPrefix); ok {
		lang, err := language.Parse(strings.TrimSpace(code))
		if err != nil {
			fmt.Fprintln(c.out, err)
			return
		}
		c.lang = lang
		fmt.Fprintf(c.out, "language: %s (%s)\n", lang.Code, lang.Engine)
		return
	}

	c.logger.Info("received text", zap.String("text", line))
	if err := c.submitter.Validate(line); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	if err := c.submitter.Submit(ctx, c.lang.RecordCode(), line); err != nil {
		c.logger.Error("error submitting sentence", zap.Error(err))
		fmt.Fprintf(c.out, "submit: %v\n", err)
	}
}
