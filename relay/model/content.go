package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"
)

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ContentBlock is one typed unit of multimodal content, in the OpenAI wire shape.
type ContentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

func ImageBlock(dataURL string) ContentBlock {
	return ContentBlock{Type: ContentTypeImageURL, ImageURL: &ImageURL{URL: dataURL}}
}

// Kind returns KindText or KindImage. Unknown wire types are treated as text.
func (b ContentBlock) Kind() string {
	if b.Type == ContentTypeImageURL {
		return KindImage
	}
	return KindText
}

// DataURL returns the image data URL, or "" for text blocks.
func (b ContentBlock) DataURL() string {
	if b.ImageURL == nil {
		return ""
	}
	return b.ImageURL.URL
}

// Content is either a plain string or an ordered block list.
// It marshals to a JSON string or to a JSON array accordingly.
type Content struct {
	Plain      string
	Blocks     []ContentBlock
	Multimodal bool
}

func NewTextContent(text string) Content {
	return Content{Plain: text}
}

func NewBlockContent(blocks []ContentBlock) Content {
	return Content{Blocks: blocks, Multimodal: true}
}

// IsBlocks reports whether the content is a block list.
func (c Content) IsBlocks() bool {
	return c.Multimodal
}

// Text returns the textual part: the plain string, or the text blocks joined by newlines.
func (c Content) Text() string {
	if !c.Multimodal {
		return c.Plain
	}
	parts := make([]string, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		if b.Kind() == KindText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ImageCount returns the number of image blocks.
func (c Content) ImageCount() int {
	n := 0
	for _, b := range c.Blocks {
		if b.Kind() == KindImage {
			n++
		}
	}
	return n
}

// AsBlocks returns the content as a block list, wrapping plain text in a single text block.
func (c Content) AsBlocks() []ContentBlock {
	if c.Multimodal {
		return c.Blocks
	}
	return []ContentBlock{TextBlock(c.Plain)}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Multimodal {
		if c.Blocks == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Plain)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Content{}
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return errors.Wrap(json.Unmarshal(data, &c.Plain), "unmarshal string content")
	case data[0] == '[':
		var blocks []ContentBlock
		if err := json.Unmarshal(data, &blocks); err != nil {
			return errors.Wrap(err, "unmarshal content blocks")
		}
		*c = NewBlockContent(blocks)
		return nil
	default:
		return errors.Errorf("content must be a string or an array, got %s", string(data[:1]))
	}
}
