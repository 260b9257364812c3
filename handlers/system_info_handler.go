package handlers

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemStats is what /systeminfo shows besides the host metrics.
type systemStats struct {
	StorageBytes int64
	Guilds       int
	TrackedStaff int
	Latency      time.Duration
}

func (h *Handler) slashSystemInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	stats := systemStats{
		StorageBytes: h.bot.Store.Size(),
		Latency:      s.HeartbeatLatency(),
		TrackedStaff: len(h.bot.Incentive.RankByLifetimeTickets()),
	}
	if guilds, err := s.UserGuilds(200, "", "", false, discordgo.WithContext(ctx)); err == nil {
		stats.Guilds = len(guilds)
	}
	return utils.SendEmbedResponse(s, i, systemInfoEmbed(stats, time.Now()), false)
}

func systemInfoEmbed(stats systemStats, now time.Time) *discordgo.MessageEmbed {
	platform, kernel := "unknown", "unknown"
	if hostInfo, err := host.Info(); err == nil {
		platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	cpuCount, _ := cpu.Counts(true)
	cpuUsage := "n/a"
	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", percent[0])
	}

	memory := "n/a"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	return &discordgo.MessageEmbed{
		Title: "系统信息",
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS 版本", Value: platform, Inline: true},
			{Name: "🔧 内核版本", Value: kernel, Inline: true},
			{Name: "🐹 Go 版本", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPU 数量", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU 使用率", Value: cpuUsage, Inline: true},
			{Name: "🧠 系统内存", Value: memory, Inline: true},
			{Name: "🗃️ 数据大小", Value: fmt.Sprintf("%.2f MB", float64(stats.StorageBytes)/1024/1024), Inline: true},
			{Name: "⏱️ WebSocket 延迟", Value: stats.Latency.String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 服务器数", Value: fmt.Sprintf("%d", stats.Guilds), Inline: true},
			{Name: "👮 统计中的管理人员", Value: fmt.Sprintf("%d", stats.TrackedStaff), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("系统监控・今天%s", now.Format("15:04")),
		},
	}
}
