// Package header reads and writes the fenced block at the top of a
// game message. The block wraps a codec token and a game type name:
//
//	```{token}
//	{name}
//	```
//
// Anything that does not open with the fence, or whose interior is not
// exactly two lines, is simply not a game header. Chat is full of
// messages that are none of our business, so every parse failure here
// is an absence, never an error.
package header

import "strings"

// Fence delimits the header block.
const Fence = "```"

// Extract returns the header block (fences included) when content
// opens with a fence and a closing fence follows.
func Extract(content string) (string, bool) {
	if !strings.HasPrefix(content, Fence) {
		return "", false
	}
	end := strings.Index(content[len(Fence):], Fence)
	if end < 0 {
		return "", false
	}
	return content[:len(Fence)+end+len(Fence)], true
}

// Parse splits a message's header into its token and type name. It
// reports false when the interior has any line count other than two,
// which covers terminal headers (name only) and foreign code blocks.
func Parse(content string) (token, name string, ok bool) {
	block, ok := Extract(content)
	if !ok {
		return "", "", false
	}
	interior := strings.TrimSpace(block[len(Fence) : len(block)-len(Fence)])
	lines := strings.Split(interior, "\n")
	if len(lines) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), true
}

// Name returns just the type name of a message's header.
func Name(content string) (string, bool) {
	_, name, ok := Parse(content)
	return name, ok
}

// Build formats a header block for a token and type name.
func Build(token, name string) string {
	return Fence + token + "\n" + name + "\n" + Fence
}

// Terminal formats the empty header used once a game has concluded.
// It carries only the name, so Parse rejects it and no further
// interactions reach the finished game.
func Terminal(name string) string {
	return Fence + name + Fence
}
