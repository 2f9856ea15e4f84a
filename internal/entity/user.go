package entity

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDetail is a user together with its purchase history.
type UserDetail struct {
	User
	Purchases []UserPurchase `json:"purchases"`
}
