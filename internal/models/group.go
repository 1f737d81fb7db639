package models

// Group is a themed collection of posts. Groups are managed by back-office
// tooling only.
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null" yaml:"title"`
	Slug        string `json:"slug" gorm:"size:200;not null;uniqueIndex" yaml:"slug"`
	Description string `json:"description" gorm:"type:text" yaml:"description"`
}

func (g Group) String() string {
	return g.Title
}
