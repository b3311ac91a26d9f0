package forum

import "time"

type Answer struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AnsweredBy string    `json:"answered_by"`
	IsAccepted bool      `json:"is_accepted"`
	Votes      int       `json:"votes"`
	CreatedAt  time.Time `json:"created_at"`
}

type Question struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Subject   string    `json:"subject,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	AskedBy   string    `json:"asked_by"`
	Answers   []Answer  `json:"answers"`
	Votes     int       `json:"votes"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}
