// Package uaparser 把 User-Agent 归类为设备类型、浏览器和操作系统。
// 解析是尽力而为的，任何输入都不会返回错误或 panic。
package uaparser

import (
	"strings"

	"github.com/mssola/useragent"
)

// 设备类型，也是 click_events.device_type 的取值
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	Unknown       = "unknown"
)

// Info 解析结果
type Info struct {
	DeviceType string
	Browser    string
	OS         string
}

// UnknownInfo 空输入或解析失败时的结果
var UnknownInfo = Info{DeviceType: Unknown, Browser: Unknown, OS: Unknown}

// Parse 解析 User-Agent
func Parse(raw string) (info Info) {
	defer func() {
		if r := recover(); r != nil {
			info = UnknownInfo
		}
	}()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownInfo
	}

	ua := useragent.New(raw)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = Unknown
	}

	return Info{
		DeviceType: deviceType(ua, raw),
		Browser:    browser,
		OS:         osFamily(ua),
	}
}

func deviceType(ua *useragent.UserAgent, raw string) string {
	if ua.Bot() {
		return Unknown
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "ipad"),
		strings.Contains(lower, "tablet"),
		strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"):
		return DeviceTablet
	case ua.Mobile():
		return DeviceMobile
	}
	if ua.OS() == "" && ua.Platform() == "" {
		return Unknown
	}
	return DeviceDesktop
}

func osFamily(ua *useragent.UserAgent) string {
	name := ua.OSInfo().Name
	full := ua.OS() + " " + ua.Platform()
	switch {
	case strings.Contains(full, "Android"):
		return "Android"
	case strings.Contains(full, "iPhone"), strings.Contains(full, "iPad"), strings.Contains(full, "iPod"):
		return "iOS"
	case strings.Contains(full, "Windows"):
		return "Windows"
	case strings.Contains(full, "CrOS"):
		return "Chrome OS"
	case strings.Contains(full, "Mac OS"), strings.Contains(full, "Macintosh"):
		return "macOS"
	case strings.Contains(full, "Linux"):
		return "Linux"
	case name != "":
		return name
	}
	return Unknown
}
