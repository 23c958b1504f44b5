package topics

// Renderer formats raw topic content for terminal display.
type Renderer interface {
	// Render takes raw content and the topic's file extension and returns
	// terminal-ready text.
	Render(content string, format string) string
}

// PlainRenderer returns content unchanged.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
