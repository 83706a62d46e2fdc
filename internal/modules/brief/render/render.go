// Package render turns a generation result into the editor-facing brief.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
)

type Input struct {
	ProductName   string
	CorrelationID string
	CreatedAt     time.Time
	IsFallback    bool
	Result        *types.GenerationResult
}

// Markdown renders the brief. Output is deterministic for a given input.
func Markdown(in Input) string {
	var b strings.Builder
	res := in.Result
	if res == nil {
		res = &types.GenerationResult{}
	}

	fmt.Fprintf(&b, "# Editing Brief: %s\n\n", escape(in.ProductName))
	if !in.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_", in.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
		if in.CorrelationID != "" {
			fmt.Fprintf(&b, " _(ref %s)_", in.CorrelationID)
		}
		b.WriteString("\n\n")
	}
	if in.IsFallback {
		b.WriteString("> Fallback brief: the model output was unavailable, review before use.\n\n")
	}

	b.WriteString("## Hook\n\n")
	fmt.Fprintf(&b, "- **Spoken:** %s\n", escape(res.SelectedSpokenHook))
	fmt.Fprintf(&b, "- **Visual:** %s\n", escape(res.SelectedVisualHook))
	fmt.Fprintf(&b, "- **Text overlay:** %s\n", escape(res.SelectedTextOverlay))
	fmt.Fprintf(&b, "- **Family:** %s", escape(res.HookFamily))
	if res.Edge {
		b.WriteString(" (edgy)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Emotional driver:** %s\n\n", escape(res.EmotionalDriver))

	b.WriteString("## Script\n\n")
	fmt.Fprintf(&b, "**Hook:** %s\n\n", escape(res.Script.Hook))
	fmt.Fprintf(&b, "%s\n\n", escape(res.Script.Body))
	fmt.Fprintf(&b, "**CTA:** %s\n\n", escape(res.Script.CTA))
	if len(res.Script.Beats) > 0 {
		b.WriteString("| Time | Action |\n|---|---|\n")
		for _, beat := range res.Script.Beats {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(beat.Duration), cell(beat.Action))
		}
		b.WriteString("\n")
	}

	notes := res.EditingNotes
	b.WriteString("## Editing Notes\n\n")
	if notes.ContentType != "" {
		fmt.Fprintf(&b, "- **Content type:** %s\n", escape(notes.ContentType))
	}
	fmt.Fprintf(&b, "- **Pace:** %s\n", escape(notes.Pace))
	fmt.Fprintf(&b, "- **Music:** %s\n", escape(notes.Music))
	fmt.Fprintf(&b, "- **Text style:** %s\n", escape(notes.TextStyle))
	fmt.Fprintf(&b, "- **Opening:** %s\n\n", escape(notes.Opening))

	b.WriteString("## Alternatives\n\n")
	section(&b, "Spoken hooks", res.SpokenHookOptions, res.SelectedSpokenHook)
	section(&b, "Visual hooks", res.VisualHookOptions, res.SelectedVisualHook)
	section(&b, "Text overlays", res.TextOverlayOptions, res.SelectedTextOverlay)
	section(&b, "CTAs", res.CTAOptions, res.SelectedCTA)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts the Markdown brief. Raw HTML in option text is escaped.
func HTML(in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(in)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(b *strings.Builder, title string, options []string, selected string) {
	if len(options) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for i, o := range options {
		mark := ""
		if o == selected {
			mark = " **(selected)**"
		}
		fmt.Fprintf(b, "%d. %s%s\n", i+1, escape(o), mark)
	}
	b.WriteString("\n")
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", "&lt;",
	">", "&gt;",
)

func escape(s string) string {
	return mdEscaper.Replace(strings.TrimSpace(s))
}

func cell(s string) string {
	return strings.ReplaceAll(escape(strings.ReplaceAll(s, "\n", " ")), "|", `\|`)
}
