package models

import "time"

// ReminderInfo сообщение для очереди уведомлений об истекающих членствах.
type ReminderInfo struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	PlanType PlanType  `json:"plan_type"`
	EndDate  time.Time `json:"end_date"`
}
