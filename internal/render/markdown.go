// Package render converts AI replies, which are usually markdown, to HTML.
package render

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/iyunix/go-aichat/internal/domain"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

// Raw HTML in the source is dropped (goldmark's default without WithUnsafe).
func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdown
}

// HTML renders markdown text as an HTML fragment.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Conversation returns a copy of c with every AI message rendered to HTML.
// User messages are left as typed.
func Conversation(c domain.Conversation) (domain.Conversation, error) {
	out := c.Clone()
	for i := range out.Messages {
		if out.Messages[i].IsUser() {
			continue
		}
		rendered, err := HTML(out.Messages[i].Content)
		if err != nil {
			return domain.Conversation{}, err
		}
		out.Messages[i].Content = rendered
	}
	return out, nil
}
