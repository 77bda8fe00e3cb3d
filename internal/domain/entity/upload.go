package entity

// UploadHandle identifies an object that finished uploading.
type UploadHandle struct {
	Key         string
	Bucket      string
	ContentType string
	Size        int64
	Token       string
}

// UploadProgress is reported while bytes are transferred.
type UploadProgress struct {
	ChatID      string  `json:"chat_id"`
	Transferred int64   `json:"transferred"`
	Total       int64   `json:"total"`
	Percent     float64 `json:"percent"`
	Uploading   bool    `json:"uploading"`
}
