package models

import "time"

type Task struct {
	ID          string    `json:"id" bson:"_id"`
	OwnerID     string    `json:"userId" bson:"user_id"`
	Text        string    `json:"text" bson:"text"`
	Completed   bool      `json:"completed" bson:"completed"`
	LastUpdated time.Time `json:"lastUpdated" bson:"last_updated"`
}

// AdminTask annotates a task with its owner's display name
// for the admin task listing.
type AdminTask struct {
	Task
	UserName string `json:"userName"`
}
