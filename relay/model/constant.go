package model

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
)

// Block kinds as seen by the pipeline, independent of the wire type names.
const (
	KindText  = "text"
	KindImage = "image"
)
