package models

import "time"

// Post is a short text update. Likes and comments are embedded in the post
// row, newest first. Name and Avatar are copied from the author at creation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `gorm:"type:jsonb;serializer:json" json:"likes"`
	Comments  []Comment `gorm:"type:jsonb;serializer:json" json:"comments"`
	CreatedAt time.Time `gorm:"index" json:"date"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like marks one user's like on a post.
type Like struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id"`
}

// Comment is a reply embedded in a post. Author fields are a snapshot.
type Comment struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// EnsureCollections replaces nil likes/comments with empty slices.
func (p *Post) EnsureCollections() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// LikedBy reports whether userID already has a like on the post.
func (p *Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
