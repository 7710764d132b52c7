package clients

import "time"

// Client represents a cooperative member who can apply for financing.
type Client struct {
	ID           string    `json:"id"`
	MemberNumber string    `json:"memberNumber"`
	FullName     string    `json:"fullName"`
	NIK          string    `json:"nik"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Occupation   string    `json:"occupation"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
