package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Member struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	Role            Role       `json:"role"`
	AvatarURL       string     `json:"avatarUrl,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	Location        string     `json:"location,omitempty"`
	Website         string     `json:"website,omitempty"`
	PreferredGenres []string   `json:"preferredGenres,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// Date marshals as a calendar day without a time component.
type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		return nil
	}
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Category      string     `json:"category,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"coverImageUrl,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	Language      string     `json:"language,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	PublishedAt   *Date      `json:"publishedAt,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	AISummary     string     `json:"aiSummary,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

type CheckoutStatus string

const (
	StatusRequested  CheckoutStatus = "requested"
	StatusCheckedOut CheckoutStatus = "checked_out"
	StatusOverdue    CheckoutStatus = "overdue"
	StatusReturned   CheckoutStatus = "returned"
	StatusCancelled  CheckoutStatus = "cancelled"
	StatusLost       CheckoutStatus = "lost"
)

// Terminal reports whether no further transition is permitted.
func (s CheckoutStatus) Terminal() bool {
	return s == StatusReturned || s == StatusCancelled || s == StatusLost
}

// Active reports whether the checkout still holds the book. Book
// availability is derived from the absence of an active checkout.
func (s CheckoutStatus) Active() bool {
	return s == StatusRequested || s == StatusCheckedOut || s == StatusOverdue
}

type Checkout struct {
	ID           string         `json:"id"`
	BookID       string         `json:"bookId"`
	MemberID     string         `json:"memberId"`
	Status       CheckoutStatus `json:"status"`
	CheckedOutAt *time.Time     `json:"checkedOutAt,omitempty"`
	DueAt        time.Time      `json:"dueAt"`
	ReturnedAt   *time.Time     `json:"returnedAt,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    *time.Time     `json:"updatedAt,omitempty"`
}
