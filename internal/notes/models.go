package notes

import "time"

type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	FileKey     string    `json:"file_key,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileType    string    `json:"file_type,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	Tags        []string  `json:"tags,omitempty"`
	Downloads   int       `json:"downloads"`
	Likes       []string  `json:"likes,omitempty"` // user IDs, at most once each
	CreatedAt   time.Time `json:"created_at"`
}

// LikedBy reports whether userID already liked the note.
func (n *Note) LikedBy(userID string) bool {
	for _, id := range n.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
