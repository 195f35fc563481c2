package notifier

import (
	"strings"
	"time"
)

const maxStructuredMessageLen = 3800

// MessageSection is one titled block inside a notification.
type MessageSection struct {
	Title string
	Lines []string
}

// StructuredMessage is the channel-independent notification format. Senders
// receive the rendered Markdown.
type StructuredMessage struct {
	Icon      string
	Title     string
	Sections  []MessageSection
	CodeBlock string // raw alert text, rendered verbatim in a fence
	Timestamp time.Time
}

// RenderMarkdown produces the Markdown body, trimming to the channel-safe
// length cap.
func (m StructuredMessage) RenderMarkdown() string {
	var b strings.Builder
	header := strings.TrimSpace(strings.TrimSpace(m.Icon + " " + m.Title))
	if header != "" {
		b.WriteString("**" + header + "**\n\n")
	}
	for _, sec := range m.Sections {
		lines := sanitizeLines(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		if title := strings.TrimSpace(sec.Title); title != "" {
			b.WriteString(sanitize(title) + "\n")
		}
		for _, line := range lines {
			b.WriteString("- " + sanitize(line) + "\n")
		}
		b.WriteString("\n")
	}
	if block := strings.TrimSpace(m.CodeBlock); block != "" {
		b.WriteString("```text\n" + strings.ReplaceAll(block, "```", "'''") + "\n```\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString(m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	body := strings.TrimSpace(b.String())
	if len(body) > maxStructuredMessageLen {
		body = body[:maxStructuredMessageLen] + "..."
	}
	return body
}

func sanitizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func sanitize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
