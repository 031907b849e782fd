package gutendex

import (
	"regexp"
	"strings"
)

const fallbackParagraphsPerChapter = 12

var (
	startMarker = regexp.MustCompile(`(?m)^\*\*\* ?START OF.*\*\*\*\s*$`)
	endMarker   = regexp.MustCompile(`(?m)^\*\*\* ?END OF.*\*\*\*\s*$`)

	// Recognizable chapter headings across Gutenberg's typesetting
	// conventions: "CHAPTER I.", "Chapter 12", "BOOK THE FIRST", "STAVE I",
	// or a bare roman numeral on its own line.
	headingPattern = regexp.MustCompile(`(?m)^\s*(?:(?:CHAPTER|Chapter|LETTER|Letter|BOOK|Book|PART|Part|STAVE|Stave)\s+[A-Za-z0-9IVXLCDM]+\.?.*|[IVXLCDM]+\.)\s*$`)
)

type chapter struct {
	Title      string
	Paragraphs []string
}

// stripBoilerplate removes the Project Gutenberg header and footer that
// wrap every plain-text edition.
func stripBoilerplate(text string) string {
	if loc := startMarker.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := endMarker.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

// splitChapters divides a flat document into chapters on recognizable
// heading lines. When no headings are found (or only one), it falls back to
// fixed-size paragraph grouping so very long flat texts still paginate.
func splitChapters(text string) []chapter {
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return groupParagraphs(text)
	}

	var chapters []chapter

	// Anything before the first heading is front matter; keep it as its
	// own chapter when it has real prose.
	if front := strings.TrimSpace(text[:locs[0][0]]); front != "" {
		paras := toParagraphs(front)
		if len(paras) > 0 {
			chapters = append(chapters, chapter{Title: "Front Matter", Paragraphs: paras})
		}
	}

	for i, loc := range locs {
		title := strings.TrimSpace(text[loc[0]:loc[1]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		paras := toParagraphs(text[loc[1]:end])
		if len(paras) == 0 {
			continue
		}
		chapters = append(chapters, chapter{Title: title, Paragraphs: paras})
	}

	if len(chapters) == 0 {
		return groupParagraphs(text)
	}
	return chapters
}

func groupParagraphs(text string) []chapter {
	paras := toParagraphs(text)
	if len(paras) == 0 {
		return nil
	}

	var chapters []chapter
	for i := 0; i < len(paras); i += fallbackParagraphsPerChapter {
		end := i + fallbackParagraphsPerChapter
		if end > len(paras) {
			end = len(paras)
		}
		chapters = append(chapters, chapter{
			Title:      "",
			Paragraphs: paras[i:end],
		})
	}
	return chapters
}

// toParagraphs splits on blank lines and joins hard-wrapped lines back into
// single paragraphs.
func toParagraphs(text string) []string {
	blocks := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	paras := make([]string, 0, len(blocks))
	for _, block := range blocks {
		joined := strings.Join(strings.Fields(block), " ")
		if joined == "" {
			continue
		}
		paras = append(paras, joined)
	}
	return paras
}
