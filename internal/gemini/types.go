package gemini

// ImageInput is a base64-encoded image with its mime type. Data may carry a
// data-URL prefix; the client strips it before sending.
type ImageInput struct {
	DataBase64 string
	MimeType   string
}

// ValidationResult is the model's verdict on an uploaded photo.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Shape  string `json:"shape"`
}
