package model

// State is the in-memory mirror of every persisted document.
// Warnings and StaffActions are keyed by user id; UserLevels, MessageStats and
// CustomCommands are keyed by guild id first.
type State struct {
	Warnings       map[string][]WarningRecord
	StaffActions   map[string][]StaffActionRecord
	UserLevels     map[string]map[string]*UserLevelRecord
	MessageStats   map[string]map[string]*MessageStatRecord
	CustomCommands map[string]map[string]string
	Settings       *Settings
}

// NewState returns an empty state with defaults applied.
func NewState() *State {
	s := &State{}
	s.Normalize()
	return s
}

// Normalize allocates missing maps and repairs records loaded from older files.
func (s *State) Normalize() {
	if s.Warnings == nil {
		s.Warnings = make(map[string][]WarningRecord)
	}
	if s.StaffActions == nil {
		s.StaffActions = make(map[string][]StaffActionRecord)
	}
	if s.UserLevels == nil {
		s.UserLevels = make(map[string]map[string]*UserLevelRecord)
	}
	for _, users := range s.UserLevels {
		for id, rec := range users {
			if rec == nil {
				users[id] = &UserLevelRecord{}
			}
		}
	}
	if s.MessageStats == nil {
		s.MessageStats = make(map[string]map[string]*MessageStatRecord)
	}
	for _, users := range s.MessageStats {
		for id, rec := range users {
			if rec == nil {
				users[id] = NewMessageStatRecord()
				continue
			}
			if rec.Daily == nil {
				rec.Daily = make(map[string]Count)
			}
			if rec.Weekly == nil {
				rec.Weekly = make(map[string]Count)
			}
			if rec.Monthly == nil {
				rec.Monthly = make(map[string]Count)
			}
		}
	}
	if s.CustomCommands == nil {
		s.CustomCommands = make(map[string]map[string]string)
	}
	if s.Settings == nil {
		s.Settings = &Settings{}
	}
	s.Settings.Normalize()
}
