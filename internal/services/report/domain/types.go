// Package domain holds the daily call report
package domain

import (
	"context"
	"time"
)

// Line is one call in a report section
type Line struct {
	CompanyName string    `json:"companyName"`
	Outcome     string    `json:"outcome"`
	CallDate    time.Time `json:"callDate"`
}

// Section is one user's calls for the day, newest first
type Section struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Calls    []Line `json:"calls"`
}

// Report is the rendered daily report
type Report struct {
	Date       string    `json:"date"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	Sections   []Section `json:"sections"`
	Sent       bool      `json:"sent"`
}

// SenderPort is consumed by the api process and the ops tool
type SenderPort interface {
	SendDaily(ctx context.Context, day time.Time) (Report, error)
	Run(ctx context.Context) error
}
