package chat

import "time"

type Message struct {
	ID        string    `json:"id"`
	DealID    string    `json:"dealId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
