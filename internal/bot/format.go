package bot

import (
	"fmt"
	"strings"

	"infocommander/internal/model"
)

// FormatPopularReport formats the daily trending-videos digest for a region.
func FormatPopularReport(region string, videos []model.Video) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 [%s] 今日發燒影片\n", region)
	for i, v := range videos {
		fmt.Fprintf(&b, "\n%d. %s\n👤 %s\n🔗 %s\n", i+1, v.Title, v.Channel, v.URL)
	}
	if len(videos) == 0 {
		b.WriteString("\n今天沒有取得任何影片。\n")
	}
	return b.String()
}

// FormatVideoAlert formats a single new-upload alert from a monitored channel.
func FormatVideoAlert(v model.Video) string {
	var b strings.Builder
	b.WriteString("📢 監控頻道有新片上架\n\n")
	fmt.Fprintf(&b, "%s\n👤 %s\n🔗 %s", v.Title, v.Channel, v.URL)
	return b.String()
}

// FormatTrendReport formats the Google Trends top-searches digest for a region.
func FormatTrendReport(region string, trends []model.Trend) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 [%s] Google 今日熱搜\n", region)
	for i, t := range trends {
		fmt.Fprintf(&b, "\n%d. %s（%s）", i+1, t.Title, t.Traffic)
	}
	if len(trends) == 0 {
		b.WriteString("\n今天沒有取得任何熱搜。")
	}
	return b.String()
}

// FormatRadarReport formats the /search radar-task result: the top video
// plus the generated analysis.
func FormatRadarReport(keyword string, v model.Video, res model.RewriteResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📡 雷達任務報告：%s\n\n", keyword)
	fmt.Fprintf(&b, "🎬 %s\n👤 %s\n🔗 %s\n\n", v.Title, v.Channel, v.URL)
	b.WriteString(res.Content)
	return b.String()
}

// FormatVaultList formats the saved-drafts listing for /vault.
func FormatVaultList(drafts []model.Draft) string {
	if len(drafts) == 0 {
		return "素材庫是空的。在閘道頻道按「存入素材庫」即可收藏草稿。"
	}

	var b strings.Builder
	b.WriteString("📥 素材庫：\n")
	for _, d := range drafts {
		fmt.Fprintf(&b, "\n#%d（%s）\n%s\n", d.ID, d.CreatedAt.Format("2006-01-02"), firstLine(d.Content))
	}
	b.WriteString("\n使用 /vault <id> 查看完整草稿。")
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
