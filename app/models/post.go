package models

import (
	"errors"
	"time"
)

// ExcerptLength is the number of characters shown when a post is
// summarized in a single line.
const ExcerptLength = 15

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}

// Excerpt returns the first ExcerptLength characters of the text.
func (p *Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) <= ExcerptLength {
		return p.Text
	}
	return string(r[:ExcerptLength])
}

// InGroup reports whether the post is published in a group.
func (p *Post) InGroup() bool {
	return p.GroupID != nil
}

// SetGroup attaches the post to g, or detaches it when g is nil.
func (p *Post) SetGroup(g *Group) {
	if g == nil {
		p.GroupID = nil
		p.Group = nil
		return
	}
	id := g.ID
	p.GroupID = &id
	p.Group = g
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}
