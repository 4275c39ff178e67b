package domain

import "time"

// Activity is one entry of the portfolio's unified activity feed
type Activity struct {
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Date  time.Time `json:"date"`
	Type  string    `json:"type"`
}

// Portfolio is the normalized output of the professional-portfolio provider
type Portfolio struct {
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	IconURL        string     `json:"iconUrl,omitempty"`
	TechScore      float64    `json:"techScore"`
	BizScore       float64    `json:"bizScore"`
	InfluenceScore float64    `json:"influenceScore"`
	Activities     []Activity `json:"activities"`
}
