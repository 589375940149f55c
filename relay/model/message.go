package model

import (
	"path"
	"strings"
)

// FileRef points at an uploaded file. URL may be absolute or relative to the blob base URL;
// when empty the file name is used.
type FileRef struct {
	Filename string `json:"filename" validate:"required"`
	URL      string `json:"url,omitempty"`
}

const (
	FileKindImage = "image"
	FileKindAudio = "audio"
	FileKindOther = "other"
)

var (
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".svg": true,
		".gif": true, ".webp": true, ".bmp": true,
	}
	audioExtensions = map[string]bool{
		".mp3": true, ".wav": true, ".m4a": true, ".ogg": true,
		".webm": true, ".flac": true, ".aac": true,
	}
)

// Kind classifies the file by the extension of its name.
func (f FileRef) Kind() string {
	ext := strings.ToLower(path.Ext(f.Filename))
	switch {
	case imageExtensions[ext]:
		return FileKindImage
	case audioExtensions[ext]:
		return FileKindAudio
	default:
		return FileKindOther
	}
}

// Message is one turn in a conversation.
type Message struct {
	Role        string    `json:"role" validate:"required,oneof=system user assistant"`
	Content     Content   `json:"content"`
	Attachments []FileRef `json:"attachments,omitempty" validate:"omitempty,dive"`
}

// PartitionAttachments splits the attachments by kind, keeping their relative order.
func (m Message) PartitionAttachments() (images, audio, others []FileRef) {
	for _, f := range m.Attachments {
		switch f.Kind() {
		case FileKindImage:
			images = append(images, f)
		case FileKindAudio:
			audio = append(audio, f)
		default:
			others = append(others, f)
		}
	}
	return images, audio, others
}
