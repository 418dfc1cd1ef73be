package domain

import "time"

// Post is free-form content owned by one account.
type Post struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) Owner() int64 { return p.OwnerID }

// Item is a named record; names are unique per owner.
type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *Item) Owner() int64 { return i.OwnerID }

const DefaultItemDescription = "No description"

// Owned is implemented by every record with a single immutable owner.
type Owned interface {
	Owner() int64
}
