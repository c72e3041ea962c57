package model

import "time"

type Book struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Author    string    `json:"author" db:"author"`
	ISBN      string    `json:"isbn" db:"isbn"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type User struct {
	ID       int    `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
}

// Session rows carry no user reference: the catalog has a single
// fixed identity, a live row is an authenticated browser.
type Session struct {
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

type CreateBookRequest struct {
	Name   string `json:"name" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required,isbn_code"`
}

// UpdateBookRequest is a partial patch: only non-nil fields are
// validated and written.
type UpdateBookRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Author *string `json:"author" validate:"omitempty,min=1"`
	ISBN   *string `json:"isbn" validate:"omitempty,isbn_code"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

type Stats struct {
	TotalBooks      int           `json:"totalBooks"`
	UniqueAuthors   int           `json:"uniqueAuthors"`
	TodayBooks      int           `json:"todayBooks"`
	UniqueISBNs     int           `json:"uniqueISBNs"`
	FrequentAuthors []AuthorCount `json:"frequentAuthors"`
	RecentBooks     []Book        `json:"recentBooks"`
}
