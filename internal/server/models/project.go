package models

import "time"

type Project struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	GitHub       string    `json:"github"`
	Demo         *string   `json:"demo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
