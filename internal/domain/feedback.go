package domain

// Feedback is a post-meeting rating submitted over HTTP.
type Feedback struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment string  `json:"comment"`
	UserID  *string `json:"user_id,omitempty"`
}
