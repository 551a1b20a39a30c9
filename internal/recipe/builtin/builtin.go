// Package builtin is the data set of fast-path recipes nexus ships with:
// system controls, Mail/Calendar/Notes/Reminders, Finder/Safari navigation,
// app lifecycle management and System Settings panes. Kept separate from
// internal/recipe's registry/execution engine so the data set can grow
// without touching the engine's schema.
package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexuscore/nexus/internal/recipe"
)

// RegisterAll registers every built-in recipe against reg. Safe to call
// once per registry.
func RegisterAll(reg *recipe.Registry) {
	registerSystem(reg)
	registerMail(reg)
	registerCalendar(reg)
	registerNotes(reg)
	registerReminders(reg)
	registerFinder(reg)
	registerSafari(reg)
	registerApps(reg)
	registerSettings(reg)
	registerNotifications(reg)
}

func clampPercent(s string) int {
	n, _ := strconv.Atoi(s)
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n
}

// --- system: volume/mute/dark-mode/lock/sleep/screenshot/battery/wifi -----

func registerSystem(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "system.set_volume",
		Pattern:  recipe.MustPattern(`set volume (?:to )?(\d+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			level := clampPercent(m[1])
			return recipe.AppleScript(ctx, fmt.Sprintf("set volume output volume %d", level))
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.get_volume",
		Pattern:  recipe.MustPattern(`(?:get |check )?(?:current )?volume`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, "output volume of (get volume settings)")
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.toggle_mute",
		Pattern:  recipe.MustPattern(`(?:toggle )?mute|unmute`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, "set volume with output muted (not (output muted of (get volume settings)))")
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.toggle_dark_mode",
		Pattern:  recipe.MustPattern(`(?:toggle |switch (?:to )?)?dark mode|(?:enable|disable) dark mode`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx,
				`tell app "System Events" to tell appearance preferences to set dark mode to not dark mode`)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.lock_screen",
		Pattern:  recipe.MustPattern(`(?:lock|lock screen|lock display)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.CLI(ctx, `/System/Library/CoreServices/Menu\ Extras/User.menu/Contents/Resources/CGSession -suspend`, 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.sleep_display",
		Pattern:  recipe.MustPattern(`(?:sleep|sleep display|display sleep)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.CLI(ctx, "pmset displaysleepnow", 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.screenshot",
		Pattern:  recipe.MustPattern(`(?:take )?screenshot(?: (?:of )?(?:the )?(.+))?`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			target := ""
			if len(m) > 1 {
				target = strings.ToLower(strings.TrimSpace(m[1]))
			}
			if target != "" && target != "screen" && target != "full" && target != "desktop" {
				return recipe.CLI(ctx, "screencapture -x -i /tmp/nexus-screenshot.png", 0)
			}
			return recipe.CLI(ctx, "screencapture -x /tmp/nexus-screenshot.png", 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.battery_status",
		Pattern:  recipe.MustPattern(`(?:get |what is (?:the )?)?battery (?:level|status|percentage|%)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.CLI(ctx, "pmset -g batt | grep -o '[0-9]*%'", 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.wifi_name",
		Pattern:  recipe.MustPattern(`(?:get |check )?wifi (?:name|ssid|network)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.CLI(ctx,
				`/System/Library/PrivateFrameworks/Apple80211.framework/Resources/airport -I | awk '/ SSID:/{print $2}'`, 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "system.set_brightness",
		Pattern:  recipe.MustPattern(`(?:set )?brightness (?:to )?(\d+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			level := clampPercent(m[1])
			normalized := float64(level) / 100.0
			return recipe.AppleScript(ctx, fmt.Sprintf(
				`tell app "System Events" to tell process "Control Center" to set value of slider 1 of group 1 to %v`,
				normalized))
		},
	})
}

// --- Mail/Calendar/Notes/Reminders -----------------------------------------

func registerMail(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "mail.compose_email",
		Pattern:  recipe.MustPattern(`(?:send|compose|write|new) (?:an? )?email (?:to )?(.+?)(?:\s+(?:about|saying|subject|with subject|re)\s+(.+))?$`),
		App:      "mail",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			to := strings.TrimSpace(m[1])
			subject := ""
			if len(m) > 2 {
				subject = m[2]
			}
			script := fmt.Sprintf(`
				tell application "Mail"
					set msg to make new outgoing message with properties {visible:true, subject:"%s"}
					tell msg
						make new to recipient with properties {address:"%s"}
					end tell
					activate
				end tell`, subject, to)
			return recipe.AppleScript(ctx, script)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "mail.check_mail",
		Pattern:  recipe.MustPattern(`check (?:my )?(?:email|inbox|mail|messages)`),
		App:      "mail",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, `tell application "Mail" to check for new mail`)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "mail.unread_count",
		Pattern:  recipe.MustPattern(`(?:how many |count )?unread (?:emails?|messages?|mail)`),
		App:      "mail",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, `tell application "Mail" to return unread count of inbox`)
		},
	})
}

func registerCalendar(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "calendar.create_event",
		Pattern:  recipe.MustPattern(`(?:create|add|schedule) (?:an? )?event (?:called |titled )?(.+)`),
		App:      "calendar",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			title := strings.TrimSpace(m[1])
			script := fmt.Sprintf(`
				tell application "Calendar"
					tell calendar 1
						make new event with properties {summary:"%s", start date:(current date), end date:((current date) + 1 * hours)}
					end tell
					activate
				end tell`, title)
			return recipe.AppleScript(ctx, script)
		},
	})
}

func registerNotes(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "notes.create_note",
		Pattern:  recipe.MustPattern(`(?:create|add|new) note(?: (?:called|titled|saying))? (.+)`),
		App:      "notes",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			body := strings.TrimSpace(m[1])
			script := fmt.Sprintf(`tell application "Notes" to make new note at folder "Notes" with properties {body:"%s"}`, body)
			return recipe.AppleScript(ctx, script)
		},
	})
}

func registerReminders(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "reminders.create",
		Pattern:  recipe.MustPattern(`(?:remind me to|add reminder|new reminder) (.+)`),
		App:      "reminders",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			title := strings.TrimSpace(m[1])
			script := fmt.Sprintf(`tell application "Reminders" to make new reminder with properties {name:"%s"}`, title)
			return recipe.AppleScript(ctx, script)
		},
	})
}

// --- Finder/Safari/browser navigation --------------------------------------

func registerFinder(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "finder.open_path",
		Pattern:  recipe.MustPattern(`(?:open|go to|show) (?:folder|directory|path) (.+)`),
		App:      "finder",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			path := strings.TrimSpace(m[1])
			return recipe.CLI(ctx, fmt.Sprintf(`open "%s"`, path), 0)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "finder.new_folder",
		Pattern:  recipe.MustPattern(`(?:create|make|new) folder (?:called |named )?(.+)`),
		App:      "finder",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			name := strings.TrimSpace(m[1])
			script := fmt.Sprintf(`tell application "Finder" to make new folder at desktop with properties {name:"%s"}`, name)
			return recipe.AppleScript(ctx, script)
		},
	})
}

func registerSafari(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "safari.open_url",
		Pattern:  recipe.MustPattern(`(?:open|go to|navigate to) (?:url |site |page )?(https?://\S+|\S+\.\S+)`),
		App:      "safari",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			url := strings.TrimSpace(m[1])
			if !strings.Contains(url, "://") {
				url = "https://" + url
			}
			return recipe.URLScheme(ctx, url)
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "safari.new_tab",
		Pattern:  recipe.MustPattern(`(?:new|open) tab`),
		App:      "safari",
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, `tell application "Safari" to make new tab at end of tabs of front window`)
		},
	})
}

// --- app lifecycle ----------------------------------------------------

func registerApps(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "apps.force_quit",
		Pattern:  recipe.MustPattern(`force quit (?:app )?(.+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			app := strings.Trim(strings.TrimSpace(m[1]), `'"`)
			return recipe.AppleScript(ctx, fmt.Sprintf(`tell app "%s" to quit`, app))
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "apps.hide",
		Pattern:  recipe.MustPattern(`hide (?:app )?(.+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			app := strings.Trim(strings.TrimSpace(m[1]), `'"`)
			return recipe.AppleScript(ctx, fmt.Sprintf(`tell app "System Events" to set visible of process "%s" to false`, app))
		},
	})
	reg.Register(recipe.Recipe{
		Name:     "apps.show_all",
		Pattern:  recipe.MustPattern(`(?:show|unhide) (?:all )?(?:hidden )?(?:apps?|windows?)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			return recipe.AppleScript(ctx, `tell app "System Events" to set visible of every process to true`)
		},
	})
}

// --- System Settings panes --------------------------------------------

var settingsPanes = map[string]string{
	"wifi": "com.apple.wifi-settings-extension", "wi-fi": "com.apple.wifi-settings-extension",
	"bluetooth": "com.apple.BluetoothSettings",
	"sound":     "com.apple.Sound-Settings.extension", "audio": "com.apple.Sound-Settings.extension",
	"display": "com.apple.Displays-Settings.extension", "displays": "com.apple.Displays-Settings.extension",
	"keyboard": "com.apple.Keyboard-Settings.extension", "trackpad": "com.apple.Trackpad-Settings.extension",
	"mouse": "com.apple.Mouse-Settings.extension", "accessibility": "com.apple.Accessibility-Settings.extension",
	"privacy": "com.apple.settings.PrivacySecurity.extension", "security": "com.apple.settings.PrivacySecurity.extension",
	"notifications": "com.apple.Notifications-Settings.extension", "general": "com.apple.General-Settings.extension",
	"network": "com.apple.Network-Settings.extension", "battery": "com.apple.Battery-Settings.extension",
	"wallpaper": "com.apple.Wallpaper-Settings.extension", "screen saver": "com.apple.ScreenSaver-Settings.extension",
	"screensaver": "com.apple.ScreenSaver-Settings.extension", "desktop": "com.apple.Desktop-Settings.extension",
	"dock": "com.apple.Desktop-Settings.extension", "focus": "com.apple.Focus-Settings.extension",
	"siri": "com.apple.Siri-Settings.extension", "spotlight": "com.apple.Spotlight-Settings.extension",
	"printers": "com.apple.Print-Scan-Settings.extension", "date": "com.apple.Date-Time-Settings.extension",
	"time": "com.apple.Date-Time-Settings.extension", "users": "com.apple.Users-Groups-Settings.extension",
	"sharing": "com.apple.Sharing-Settings.extension", "startup": "com.apple.LoginItems-Settings.extension",
	"login items": "com.apple.LoginItems-Settings.extension", "storage": "com.apple.settings.Storage",
	"vpn": "com.apple.NetworkExtensionSettingsUI.NESettingsUIExtension",
}

func registerSettings(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "settings.open_pane",
		Pattern:  recipe.MustPattern(`(?:open )?(?:system )?settings?\s+(?:for\s+)?(.+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			pane := strings.ToLower(strings.TrimSpace(m[1]))
			if id, ok := settingsPanes[pane]; ok {
				return recipe.URLScheme(ctx, "x-apple.systempreferences:"+id)
			}
			for key, id := range settingsPanes {
				if strings.Contains(pane, key) || strings.Contains(key, pane) {
					return recipe.URLScheme(ctx, "x-apple.systempreferences:"+id)
				}
			}
			known := make([]string, 0, len(settingsPanes))
			for key := range settingsPanes {
				known = append(known, key)
			}
			return recipe.Result{OK: false, Error: fmt.Sprintf("unknown pane: %s. known: %s", pane, strings.Join(known, ", "))}
		},
	})
}

func registerNotifications(reg *recipe.Registry) {
	reg.Register(recipe.Recipe{
		Name:     "notifications.send",
		Pattern:  recipe.MustPattern(`(?:send |show |post )?notification (?:saying |with text )?(.+)`),
		Priority: 50,
		Handler: func(ctx context.Context, m []string, pid int) recipe.Result {
			text := strings.TrimSpace(m[1])
			text = strings.ReplaceAll(text, `"`, `\"`)
			return recipe.AppleScript(ctx, fmt.Sprintf(`display notification "%s" with title "Nexus"`, text))
		},
	})
}
