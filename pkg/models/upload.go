package models

// Upload is one file submitted for analysis
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"-"`
}

// Size returns the payload length in bytes
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}
