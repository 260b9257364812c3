package model

import "time"

// UserLevelRecord 记录某个用户在某个服务器的经验与等级。
type UserLevelRecord struct {
	Experience Count `json:"xp"`
	Level      Count `json:"level"`
}

// MessageStatRecord 记录某个用户在某个服务器的消息数量，按日、周、月分桶。
type MessageStatRecord struct {
	Total   Count            `json:"total"`
	Daily   map[string]Count `json:"daily"`
	Weekly  map[string]Count `json:"weekly"`
	Monthly map[string]Count `json:"monthly"`
}

// NewMessageStatRecord returns an empty record with all bucket maps allocated.
func NewMessageStatRecord() *MessageStatRecord {
	return &MessageStatRecord{
		Daily:   make(map[string]Count),
		Weekly:  make(map[string]Count),
		Monthly: make(map[string]Count),
	}
}

// WarningRecord is a single warning issued to a user.
type WarningRecord struct {
	Reason    string    `json:"reason"`
	Moderator string    `json:"moderator"`
	Timestamp time.Time `json:"timestamp"`
}

// StaffActionRecord is one entry of the append-only staff audit log.
type StaffActionRecord struct {
	Action    string    `json:"action"`
	TargetID  string    `json:"targetId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// StaffActivityRecord 记录一名管理人员的工单与消息活跃度。
// Tickets 为历史累计工单消息 ID，Weekly 为本周期内的工单消息 ID。
type StaffActivityRecord struct {
	Tickets        []string `json:"tickets"`
	Weekly         []string `json:"weekly"`
	Messages       Count    `json:"messages"`
	WeeklyMessages Count    `json:"weeklyMessages"`
}

// HasTicket reports whether the ticket id is already in the lifetime set.
func (r *StaffActivityRecord) HasTicket(id string) bool {
	for _, t := range r.Tickets {
		if t == id {
			return true
		}
	}
	return false
}

// StaffPayment is the weekly point total computed for one staff member.
type StaffPayment struct {
	Week     string `json:"week"`
	Tickets  int    `json:"tickets"`
	Messages int    `json:"messages"`
	Points   int64  `json:"gokupoints"`
}
