package models

import "time"

// excerptLen is how many characters of a post's text are used as its title.
const excerptLen = 15

// Post is a single blog entry. Posts are never deleted.
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"foreignKey:AuthorID"`
	GroupID  *uint     `json:"group_id,omitempty" gorm:"index"`
	Group    *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string    `json:"image,omitempty" gorm:"size:255"` // blob store key
}

// Excerpt returns the first few characters of the text.
func (p Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) <= excerptLen {
		return p.Text
	}
	return string(r[:excerptLen])
}

func (p Post) String() string {
	return p.Excerpt()
}

// PostForm is the create/edit form. Group is 0 when no group is selected.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group uint   `form:"group"`
}
