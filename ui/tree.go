package ui

import (
	"strings"
	"unicode/utf8"
)

// Tree connector glyphs. A node's prefix is one glyph per ancestor
// level followed by its own branch connector.
const (
	TreeBranch     = "├── " // child with siblings below it
	TreeLastBranch = "└── " // last child of its group
	TreeContinue   = "│   " // ancestor still has siblings below
	TreeIndent     = "    " // ancestor was a last child
)

// Box frame glyphs.
const (
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxVertical    = "│"
	boxHorizontal  = "─"
	boxTeeRight    = "├"
	boxTeeLeft     = "┤"
)

// BuildTreePrefix returns the glyph prefix for a node at depth (the
// root sits at depth 0 and renders bare). parentIsLast records, per
// ancestor level, whether that ancestor was the last of its siblings:
// spent branches indent with blanks, live ones continue their vertical
// line down to the current row.
func BuildTreePrefix(depth int, isLast bool, parentIsLast []bool) string {
	if depth == 0 {
		return ""
	}
	var b strings.Builder
	for level := 0; level < depth-1; level++ {
		if level < len(parentIsLast) && parentIsLast[level] {
			b.WriteString(TreeIndent)
		} else {
			b.WriteString(TreeContinue)
		}
	}
	if isLast {
		b.WriteString(TreeLastBranch)
	} else {
		b.WriteString(TreeBranch)
	}
	return b.String()
}

// BuildBoxHeader draws the top of a box and its title row. Width is
// measured in runes and grows when the title cannot fit.
func BuildBoxHeader(title string, width int) string {
	if min := utf8.RuneCountInString(title) + 4; width < min {
		width = min
	}
	var b strings.Builder
	b.WriteString(boxTopLeft + rule(width-2) + boxTopRight + "\n")
	b.WriteString(boxRow(title, width))
	b.WriteString(boxTeeRight + rule(width-2) + boxTeeLeft + "\n")
	return b.String()
}

// BuildBoxLine draws one content row inside a box, truncating with an
// ellipsis when the content cannot fit the width.
func BuildBoxLine(content string, width int) string {
	if max := width - 4; utf8.RuneCountInString(content) > max {
		content = string([]rune(content)[:max-3]) + "..."
	}
	return boxRow(content, width)
}

// BuildBoxFooter draws the bottom of a box.
func BuildBoxFooter(width int) string {
	return boxBottomLeft + rule(width-2) + boxBottomRight + "\n"
}

// boxRow frames content between the box walls, space-padded so the row
// is exactly width runes wide.
func boxRow(content string, width int) string {
	padding := width - 3 - utf8.RuneCountInString(content)
	if padding < 0 {
		padding = 0
	}
	return boxVertical + " " + content + strings.Repeat(" ", padding) + boxVertical + "\n"
}

// rule draws n horizontal rule glyphs.
func rule(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(boxHorizontal, n)
}
