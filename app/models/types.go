package models

import "time"

// User is a registered author. Username is the unique public handle.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username" validate:"required,max=150,username"`
	FirstName    string    `json:"first_name" validate:"required,max=100"`
	LastName     string    `json:"last_name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"required,max=254,email"`
	Phone        string    `json:"phone" validate:"required,e164"`
	PasswordHash string    `json:"password_hash" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`

	// SessionVersion is carried by session tokens; raising it revokes
	// every token issued before.
	SessionVersion int `json:"session_version"`
}

// Group is a community posts can be published in.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description" validate:"required"`
}

// Post is a blog entry owned by its author. Author, Group and
// Comments are filled in by services and never persisted.
type Post struct {
	ID        int       `json:"id"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	GroupID   *int      `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	Image     string    `json:"image,omitempty"`

	Author   *User      `json:"-" validate:"-"`
	Group    *Group     `json:"-" validate:"-"`
	Comments []*Comment `json:"-" validate:"-"`
}

// Comment is a reply left on a post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id" validate:"required,gt=0"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `json:"-" validate:"-"`
}

// Follow is a directed edge from a follower to an author.
type Follow struct {
	FollowerID int       `json:"follower_id"`
	AuthorID   int       `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}
