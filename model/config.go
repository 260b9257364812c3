package model

import "time"

// Config 存储进程级配置，启动时从环境变量和配置文件加载，运行期间不写回。
type Config struct {
	BotToken               string
	BotOwnerID             string
	DataDir                string
	StorageBackend         string
	SQLitePath             string
	LogLevel               string
	CommandGuildID         string
	DisableCommandRegister bool

	TranscriptScanInterval time.Duration
	StatsWeekStart         time.Weekday
	StatsRetentionDays     int

	Weekly WeeklyScheduleConfig
	Payout PayoutConfig
}

// WeeklyScheduleConfig 描述每周结算任务的触发时间。
type WeeklyScheduleConfig struct {
	Enabled   bool
	Weekday   time.Weekday
	Hour      int
	Location  *time.Location
	AutoReset bool
}

// PayoutConfig 描述向外部经济系统输出指令的方式。
type PayoutConfig struct {
	ChannelID string
	Command   string
}
