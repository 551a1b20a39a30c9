package dialog

import (
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
)

// RelButton is a button position expressed as a fraction of the dialog's
// own bounds, so one template works across dialog sizes and resolutions.
type RelButton struct {
	RelX, RelY float64
	Labels     []string
}

// RelField is an input field position, same relative-coordinate scheme.
type RelField struct {
	RelX, RelY float64
}

// Template describes one known dialog shape: the OCR phrases that identify
// it, the process it normally comes from (empty means any process), and
// its buttons'/fields' relative positions.
type Template struct {
	MatchPhrases []string
	Process      string
	Description  string
	Buttons      map[string]RelButton
	Fields       map[string]RelField
}

// Templates is the known-dialog table, keyed by template id.
var Templates = map[string]Template{
	"gatekeeper_open": {
		MatchPhrases: []string{
			"downloaded from the internet", "descargada de internet",
			"developer cannot be verified", "no se puede verificar",
		},
		Process:     "CoreServicesUIAgent",
		Description: "Gatekeeper: app from internet — Open/Cancel",
		Buttons: map[string]RelButton{
			"open":   {RelX: 0.75, RelY: 0.85, Labels: []string{"Open", "Abrir"}},
			"cancel": {RelX: 0.55, RelY: 0.85, Labels: []string{"Cancel", "Cancelar"}},
		},
	},
	"gatekeeper_verifying": {
		MatchPhrases: []string{"verifying", "verificando", "checking its security"},
		Process:      "CoreServicesUIAgent",
		Description:  "Gatekeeper: verifying app (auto-dismisses)",
	},
	"gatekeeper_damaged": {
		MatchPhrases: []string{
			"is damaged", "está dañad", "move to trash", "mover a la papelera",
		},
		Process:     "CoreServicesUIAgent",
		Description: "Gatekeeper: app damaged — Move to Trash/Cancel",
		Buttons: map[string]RelButton{
			"trash":  {RelX: 0.75, RelY: 0.85, Labels: []string{"Move to Trash", "Trasladar a la Papelera"}},
			"cancel": {RelX: 0.45, RelY: 0.85, Labels: []string{"Cancel", "Cancelar"}},
		},
	},
	"password_prompt": {
		MatchPhrases: []string{
			"password", "contraseña", "wants to make changes", "quiere realizar cambios",
		},
		Process:     "SecurityAgent",
		Description: "Admin password required",
		Buttons: map[string]RelButton{
			"ok":     {RelX: 0.82, RelY: 0.88, Labels: []string{"OK", "Aceptar", "Unlock", "Desbloquear"}},
			"cancel": {RelX: 0.65, RelY: 0.88, Labels: []string{"Cancel", "Cancelar"}},
		},
		Fields: map[string]RelField{
			"password": {RelX: 0.55, RelY: 0.65},
		},
	},
	"keychain_access": {
		MatchPhrases: []string{"keychain", "llavero", "wants to access", "quiere acceder"},
		Process:      "SecurityAgent",
		Description:  "Keychain access request",
		Buttons: map[string]RelButton{
			"allow":        {RelX: 0.82, RelY: 0.88, Labels: []string{"Allow", "Permitir"}},
			"always_allow": {RelX: 0.65, RelY: 0.88, Labels: []string{"Always Allow", "Permitir siempre"}},
			"deny":         {RelX: 0.48, RelY: 0.88, Labels: []string{"Deny", "Denegar"}},
		},
	},
	"network_permission": {
		MatchPhrases: []string{
			"find devices on your local network", "encontrar dispositivos en tu red local",
			"find and connect", "buscar y conectarse",
		},
		Process:     "UserNotificationCenter",
		Description: "Network discovery permission",
		Buttons: map[string]RelButton{
			"allow":       {RelX: 0.75, RelY: 0.85, Labels: []string{"Allow", "Permitir"}},
			"dont_allow":  {RelX: 0.45, RelY: 0.85, Labels: []string{"Don't Allow", "No permitir"}},
		},
	},
	"folder_access": {
		MatchPhrases: []string{
			"would like to access", "quiere acceder a", "files in your", "archivos en tu",
		},
		Process:     "UserNotificationCenter",
		Description: "Folder access request",
		Buttons: map[string]RelButton{
			"ok":         {RelX: 0.75, RelY: 0.85, Labels: []string{"OK", "Aceptar"}},
			"dont_allow": {RelX: 0.45, RelY: 0.85, Labels: []string{"Don't Allow", "No permitir"}},
		},
	},
	"save_dialog": {
		MatchPhrases: []string{
			"do you want to save", "¿deseas guardar", "save changes", "guardar los cambios",
		},
		Description: "Save changes dialog",
		Buttons: map[string]RelButton{
			"save":       {RelX: 0.82, RelY: 0.88, Labels: []string{"Save", "Guardar"}},
			"dont_save":  {RelX: 0.55, RelY: 0.88, Labels: []string{"Don't Save", "No guardar"}},
			"cancel":     {RelX: 0.38, RelY: 0.88, Labels: []string{"Cancel", "Cancelar"}},
		},
	},
}

// MatchTemplate finds the template whose match phrases score highest
// against ocrText, optionally constrained to process (a template with a
// non-empty Process only matches when process equals it or is empty).
func MatchTemplate(ocrText, process string) (string, Template, bool) {
	lower := strings.ToLower(ocrText)
	bestID, bestScore := "", 0
	for id, t := range Templates {
		if t.Process != "" && process != "" && t.Process != process {
			continue
		}
		score := 0
		for _, phrase := range t.MatchPhrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestID = id
		}
	}
	if bestID == "" {
		return "", Template{}, false
	}
	return bestID, Templates[bestID], true
}

// ResolveButton scales a template button's relative position to the
// dialog's absolute screen bounds.
func ResolveButton(t Template, key string, bounds capability.Rect) (capability.Point, bool) {
	btn, ok := t.Buttons[key]
	if !ok {
		return capability.Point{}, false
	}
	return capability.Point{
		X: bounds.X + int(btn.RelX*float64(bounds.W)),
		Y: bounds.Y + int(btn.RelY*float64(bounds.H)),
	}, true
}

// ResolveField scales a template field's relative position to the dialog's
// absolute screen bounds.
func ResolveField(t Template, key string, bounds capability.Rect) (capability.Point, bool) {
	f, ok := t.Fields[key]
	if !ok {
		return capability.Point{}, false
	}
	return capability.Point{
		X: bounds.X + int(f.RelX*float64(bounds.W)),
		Y: bounds.Y + int(f.RelY*float64(bounds.H)),
	}, true
}

// AllTemplates returns every template id mapped to its description, for
// reference/debugging.
func AllTemplates() map[string]string {
	out := make(map[string]string, len(Templates))
	for id, t := range Templates {
		out[id] = t.Description
	}
	return out
}
