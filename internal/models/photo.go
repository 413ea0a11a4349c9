package models

// Photo references an uploaded image held in the preview store. The bytes
// live only as long as the preview handle does.
type Photo struct {
	PreviewID   string `json:"previewId"`
	PreviewURL  string `json:"previewUrl"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
