// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "monokai"

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code region ready for display.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
	// Style is a chroma style name.
	Style string
}

// NewCodeBlock creates a code block with default width and style.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
		Style:    DefaultCodeStyle,
	}
}

// Render renders the code block with line numbers and a language badge.
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.TrimRight(c.Code, "\n")

	lines := strings.Split(highlightCode(code, c.Language, c.Style), "\n")
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = theme.CodeLineNum.Render(strconv.Itoa(i+1)) + line
	}
	body := strings.Join(rendered, "\n")

	var header string
	if c.Language != "" {
		header = theme.CodeLangBadge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 2
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + body)
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode returns ANSI-highlighted code, or the input unchanged when
// chroma cannot tokenise it.
func highlightCode(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := chromaStyles.Get(style)
	if s == nil {
		s = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return code
	}
	return buf.String()
}
