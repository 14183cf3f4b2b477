package domain

// CalendarQuery selects a user's month; zero year or month means the current one
type CalendarQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Year   int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Month  int    `json:"month" validate:"omitempty,min=1,max=12"`
}

// CalendarDay is one day cell
type CalendarDay struct {
	Date          string `json:"date" example:"2025-06-10"`
	CallsMade     int    `json:"callsMade" example:"3"`
	Target        int    `json:"target" example:"3"`
	TargetReached bool   `json:"targetReached" example:"true"`
	IsToday       bool   `json:"isToday"`
}

// CalendarStats summarises the user's history
type CalendarStats struct {
	TotalDaysSinceStart int `json:"totalDaysSinceStart"`
	TargetReachedDays   int `json:"targetReachedDays"`
	CurrentStreak       int `json:"currentStreak"`
}

// Calendar is the month view payload
type Calendar struct {
	Month string        `json:"month" example:"2025-06"`
	Stats CalendarStats `json:"stats"`
	Days  []CalendarDay `json:"days"`
}

// StatsUser is the user block of the stats summary
type StatsUser struct {
	Name          string `json:"name"`
	Level         string `json:"level"`
	CurrentTarget int    `json:"currentTarget"`
	TotalPoints   int    `json:"totalPoints"`
	TodaysCalls   int    `json:"todaysCalls"`
}

// StatsOverall covers the user's whole history
type StatsOverall struct {
	TotalDaysSinceStart int `json:"totalDaysSinceStart"`
	TargetReachedDays   int `json:"targetReachedDays"`
	SuccessRate         int `json:"successRate" example:"64"`
	CurrentStreak       int `json:"currentStreak"`
}

// StatsMonth covers the current month
type StatsMonth struct {
	TotalDays         int `json:"totalDays"`
	TargetReachedDays int `json:"targetReachedDays"`
	TotalCalls        int `json:"totalCalls"`
}

// Stats is the streak and success summary
type Stats struct {
	User         StatsUser    `json:"user"`
	Overall      StatsOverall `json:"overall"`
	CurrentMonth StatsMonth   `json:"currentMonth"`
}

// TodayInput names the user whose row for today should exist
type TodayInput struct {
	UserID string `json:"userId" validate:"omitempty,uuid"`
}
