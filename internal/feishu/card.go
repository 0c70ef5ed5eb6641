// Package feishu delivers interactive card notifications, either through a
// custom-bot webhook or through the official SDK with app credentials.
package feishu

import "strings"

// CardMessage is the logical input: a title, a markdown body, and an
// optional footnote (e.g. the source platform and author).
type CardMessage struct {
	Title    string
	Body     string
	Note     string
	Template string
}

// Card is the interactive-card wire payload.
type Card struct {
	Config   CardConfig    `json:"config"`
	Header   CardHeader    `json:"header"`
	Elements []CardElement `json:"elements"`
}

// CardConfig controls card rendering options.
type CardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

// CardHeader is the colored title bar.
type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template,omitempty"`
}

// CardText is one text node (plain_text or lark_md).
type CardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// CardElement is one card body element. Only the fields matching the tag
// are populated.
type CardElement struct {
	Tag      string     `json:"tag"`
	Content  string     `json:"content,omitempty"`
	Elements []CardText `json:"elements,omitempty"`
}

// BuildCard shapes a CardMessage into the interactive-card payload.
func BuildCard(msg CardMessage) Card {
	template := msg.Template
	if template == "" {
		template = "blue"
	}
	title := strings.TrimSpace(msg.Title)
	if title == "" {
		title = "New message"
	}

	elements := []CardElement{
		{Tag: "markdown", Content: msg.Body},
	}
	if note := strings.TrimSpace(msg.Note); note != "" {
		elements = append(elements,
			CardElement{Tag: "hr"},
			CardElement{
				Tag: "note",
				Elements: []CardText{
					{Tag: "plain_text", Content: note},
				},
			},
		)
	}

	return Card{
		Config: CardConfig{WideScreenMode: true},
		Header: CardHeader{
			Title:    CardText{Tag: "plain_text", Content: title},
			Template: template,
		},
		Elements: elements,
	}
}
