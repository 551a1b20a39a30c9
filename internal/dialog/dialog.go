// Package dialog detects and classifies OS-level system dialogs (Gatekeeper
// verification, code-signing gates, password/keychain prompts, folder and
// network permission requests) that live outside the accessibility tree of
// any ordinary application window, and matches them against a table of
// known button-position templates so they can be auto-dismissed or
// described without a full OCR pass every time.
package dialog

import (
	"fmt"
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
)

// KnownProcesses names the owning processes whose windows are system
// dialogs invisible to the accessibility tree.
var KnownProcesses = map[string]bool{
	"CoreServicesUIAgent":    true, // code-signing / Gatekeeper verification
	"SecurityAgent":          true, // password prompts, keychain, admin auth
	"UserNotificationCenter": true, // folder/network permission prompts
}

const (
	minWidth  = 50
	minHeight = 50
)

// Detect polls the window list for windows owned by a known system-dialog
// process, filtering out stub windows too small to be a real dialog.
func Detect(windows []capability.Window) []capability.Window {
	var out []capability.Window
	for _, w := range windows {
		if !KnownProcesses[w.App] {
			continue
		}
		if w.Bounds.W < minWidth || w.Bounds.H < minHeight {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Classification describes what kind of dialog was found and the button
// labels a caller should look for to act on it.
type Classification struct {
	Type            string
	Description     string
	SuggestedAction string
	ButtonLabels    []string
}

// Safe classifications map to the button key that's safe to auto-click when
// the auto-dismiss preference is enabled.
var Safe = map[string]string{
	"gatekeeper":        "open",
	"folder_permission": "ok",
	"folder_access":     "ok",
}

// Unsafe classifications always block regardless of preference.
var Unsafe = map[string]bool{
	"password_prompt":  true,
	"auth_prompt":      true,
	"keychain_access":  true,
	"network_permission": true,
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Classify determines a dialog's type from its owning process and the OCR
// text recovered from its bounds. The caller passes the raw OCR text;
// Classify lowercases it before matching.
func Classify(process, ocrText string) Classification {
	text := strings.ToLower(ocrText)

	switch process {
	case "CoreServicesUIAgent":
		if containsAny(text, "downloaded from the internet", "descargada de internet",
			"apple cannot check", "developer cannot be verified", "no se puede verificar") {
			return Classification{
				Type:            "gatekeeper",
				Description:     "Gatekeeper: app downloaded from internet",
				SuggestedAction: "Click Open to allow, or Cancel to block",
				ButtonLabels:    []string{"open", "abrir", "cancel", "cancelar"},
			}
		}
		if containsAny(text, "verifying", "verificando", "checking", "comprobando") {
			return Classification{
				Type:            "gatekeeper_verifying",
				Description:     "Gatekeeper: verifying app (wait for it to finish)",
				SuggestedAction: "Wait — this dialog dismisses itself",
			}
		}
		if containsAny(text, "is damaged", "está dañad", "move to trash", "mover a la papelera") {
			return Classification{
				Type:            "gatekeeper_damaged",
				Description:     "Gatekeeper: app damaged — Move to Trash/Cancel",
				SuggestedAction: "Move to Trash or Cancel",
				ButtonLabels:    []string{"move to trash", "trasladar a la papelera", "cancel", "cancelar"},
			}
		}
		return Classification{
			Type:            "system_prompt",
			Description:     "System prompt from CoreServicesUIAgent",
			SuggestedAction: "Review the dialog text and choose an action",
			ButtonLabels:    []string{"ok", "cancel", "open", "allow"},
		}

	case "SecurityAgent":
		if containsAny(text, "keychain", "llavero") {
			return Classification{
				Type:            "keychain_access",
				Description:     "Keychain access request",
				SuggestedAction: "User must decide whether to allow keychain access",
				ButtonLabels:    []string{"allow", "permitir", "always allow", "permitir siempre", "deny", "denegar"},
			}
		}
		if containsAny(text, "password", "contraseña", "authenticate", "autenticar") {
			return Classification{
				Type:            "password_prompt",
				Description:     "Password required for privileged operation",
				SuggestedAction: "User must enter password manually",
				ButtonLabels:    []string{"ok", "cancel", "unlock", "allow", "desbloquear", "permitir"},
			}
		}
		return Classification{
			Type:            "auth_prompt",
			Description:     "Authentication required",
			SuggestedAction: "User must authenticate",
			ButtonLabels:    []string{"ok", "cancel", "allow", "deny"},
		}

	case "UserNotificationCenter":
		if containsAny(text, "find devices", "encontrar dispositivos", "local network", "red local") {
			return Classification{
				Type:            "network_permission",
				Description:     "App wants to find devices on local network",
				SuggestedAction: "Allow or Don't Allow — user decision",
				ButtonLabels:    []string{"allow", "don't allow", "permitir", "no permitir"},
			}
		}
		if containsAny(text, "access", "acceder", "folder", "carpeta") {
			return Classification{
				Type:            "folder_permission",
				Description:     "App requesting folder access",
				SuggestedAction: "Allow or Don't Allow — user decision",
				ButtonLabels:    []string{"ok", "allow", "don't allow", "permitir"},
			}
		}
		return Classification{
			Type:            "permission_prompt",
			Description:     "Permission dialog",
			SuggestedAction: "Review and choose",
			ButtonLabels:    []string{"ok", "allow", "cancel", "deny"},
		}
	}

	return Classification{
		Type:            "unknown",
		Description:     fmt.Sprintf("System dialog from %s", process),
		SuggestedAction: "Review the dialog",
	}
}

// buttonKeyLabels maps a safe-dismiss button key to the label variants
// (including Spanish-localized system dialogs) that identify it.
var buttonKeyLabels = map[string][]string{
	"open":   {"open", "abrir"},
	"ok":     {"ok", "aceptar"},
	"cancel": {"cancel", "cancelar"},
	"allow":  {"allow", "permitir"},
}

// ButtonLabelsFor returns the label variants a button key matches against.
func ButtonLabelsFor(key string) []string {
	if labels, ok := buttonKeyLabels[strings.ToLower(key)]; ok {
		return labels
	}
	return []string{strings.ToLower(key)}
}

// FindButton returns the first element among candidates whose label
// matches one of the wanted label variants (exact or substring), used to
// click a dialog button found by OCR.
func FindButton(candidates []capability.Element, wanted []string) (capability.Element, bool) {
	for _, label := range wanted {
		for _, c := range candidates {
			cl := strings.ToLower(strings.TrimSpace(c.Label))
			if cl == label || strings.Contains(cl, label) {
				return c, true
			}
		}
	}
	return capability.Element{}, false
}

// Format renders detected dialogs (with their classifications, where
// known) as a block for the fusion text output, matching the source's
// format_system_dialogs.
func Format(windows []capability.Window, classifications []Classification) string {
	if len(windows) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SYSTEM DIALOGS (%d):\n", len(windows))
	for i, w := range windows {
		if i < len(classifications) {
			c := classifications[i]
			fmt.Fprintf(&b, "  [%s] %s\n", strings.ToUpper(c.Type), c.Description)
			fmt.Fprintf(&b, "    Process: %s (pid %d)\n", w.App, w.PID)
			fmt.Fprintf(&b, "    Bounds: x=%d, y=%d, w=%d, h=%d\n", w.Bounds.X, w.Bounds.Y, w.Bounds.W, w.Bounds.H)
			if c.SuggestedAction != "" {
				fmt.Fprintf(&b, "    Action: %s\n", c.SuggestedAction)
			}
		} else {
			title := w.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&b, "  %s: %s\n", w.App, title)
			fmt.Fprintf(&b, "    Bounds: x=%d, y=%d, w=%d, h=%d\n", w.Bounds.X, w.Bounds.Y, w.Bounds.W, w.Bounds.H)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
