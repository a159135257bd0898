package permissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPermissions = errors.New("invalid permissions")
)

// Page es un área funcional del producto con permisos independientes.
type Page string

const (
	PageScreenplay    Page = "screenplay"
	PageTimeline      Page = "timeline"
	PageCharacters    Page = "characters"
	PageAssets        Page = "assets"
	PageStoryboards   Page = "storyboards"
	PageTreatments    Page = "treatments"
	PageLocations     Page = "locations"
	PageCrew          Page = "crew"
	PageEquipment     Page = "equipment"
	PageProps         Page = "props"
	PageCallSheets    Page = "call_sheets"
	PageLightingPlots Page = "lighting_plots"
)

// Action es una acción que se puede conceder sobre una página.
type Action string

const (
	ActionView       Action = "view"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionAdd        Action = "add"
	ActionAddScenes  Action = "add_scenes"
	ActionEditScenes Action = "edit_scenes"
	ActionUpload     Action = "upload"
)

type actionBits uint8

// Orden estable para serializar y listar acciones.
var actionOrder = []Action{
	ActionView,
	ActionEdit,
	ActionDelete,
	ActionAdd,
	ActionAddScenes,
	ActionEditScenes,
	ActionUpload,
}

var pageOrder = []Page{
	PageScreenplay,
	PageTimeline,
	PageCharacters,
	PageAssets,
	PageStoryboards,
	PageTreatments,
	PageLocations,
	PageCrew,
	PageEquipment,
	PageProps,
	PageCallSheets,
	PageLightingPlots,
}

func bitOf(a Action) (actionBits, bool) {
	for i, known := range actionOrder {
		if known == a {
			return 1 << uint(i), true
		}
	}
	return 0, false
}

func mask(actions ...Action) actionBits {
	var out actionBits
	for _, a := range actions {
		b, _ := bitOf(a)
		out |= b
	}
	return out
}

var (
	baseActions    = mask(ActionView, ActionEdit, ActionDelete)
	sceneActions   = baseActions | mask(ActionAddScenes, ActionEditScenes)
	contentActions = baseActions | mask(ActionAdd)
)

// legal es la tabla página -> acciones permitidas.
var legal = map[Page]actionBits{
	PageScreenplay:    sceneActions,
	PageTimeline:      sceneActions,
	PageCharacters:    contentActions,
	PageAssets:        contentActions | mask(ActionUpload),
	PageStoryboards:   contentActions,
	PageTreatments:    contentActions,
	PageLocations:     contentActions,
	PageCrew:          contentActions,
	PageEquipment:     contentActions,
	PageProps:         contentActions,
	PageCallSheets:    contentActions,
	PageLightingPlots: contentActions,
}

// Pages devuelve las doce páginas en orden de presentación.
func Pages() []Page {
	out := make([]Page, len(pageOrder))
	copy(out, pageOrder)
	return out
}

// Actions devuelve todas las acciones conocidas.
func Actions() []Action {
	out := make([]Action, len(actionOrder))
	copy(out, actionOrder)
	return out
}

func IsKnownPage(p Page) bool {
	_, ok := legal[p]
	return ok
}

func ParsePage(raw string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(raw)))
	if !IsKnownPage(p) {
		return "", fmt.Errorf("%w: unknown page %q", ErrInvalidPermissions, raw)
	}
	return p, nil
}

func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := bitOf(a); !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidPermissions, raw)
	}
	return a, nil
}

// IsLegal indica si la acción aplica a la página.
func IsLegal(p Page, a Action) bool {
	b, ok := bitOf(a)
	if !ok {
		return false
	}
	return legal[p]&b != 0
}

// LegalActions lista las acciones que aplican a la página (vacío si la página no existe).
func LegalActions(p Page) []Action {
	return legal[p].actions()
}

func (b actionBits) actions() []Action {
	out := make([]Action, 0, len(actionOrder))
	for i, a := range actionOrder {
		if b&(1<<uint(i)) != 0 {
			out = append(out, a)
		}
	}
	return out
}

// PagePermissions es el conjunto de acciones concedidas sobre UNA página.
// Solo se construye con acciones legales para esa página: una acción ilegal
// nunca puede quedar concedida.
type PagePermissions struct {
	page    Page
	granted actionBits
}

// Denied devuelve permisos vacíos (todo false) para la página.
func Denied(p Page) PagePermissions {
	return PagePermissions{page: p}
}

// New construye permisos para la página; falla si alguna acción no aplica.
func New(p Page, actions ...Action) (PagePermissions, error) {
	if !IsKnownPage(p) {
		return PagePermissions{}, fmt.Errorf("%w: unknown page %q", ErrInvalidPermissions, p)
	}
	out := Denied(p)
	for _, a := range actions {
		if !IsLegal(p, a) {
			return PagePermissions{}, fmt.Errorf("%w: action %q not allowed on page %q", ErrInvalidPermissions, a, p)
		}
		b, _ := bitOf(a)
		out.granted |= b
	}
	return out, nil
}

// MustNew es como New pero hace panic; pensado para tablas estáticas y tests.
func MustNew(p Page, actions ...Action) PagePermissions {
	out, err := New(p, actions...)
	if err != nil {
		panic(err)
	}
	return out
}

func (p PagePermissions) Page() Page { return p.page }

// Can responde si la acción está concedida. Acciones ilegales siempre false.
func (p PagePermissions) Can(a Action) bool {
	b, ok := bitOf(a)
	if !ok {
		return false
	}
	return p.granted&b != 0
}

// None es true si no hay ninguna acción concedida.
func (p PagePermissions) None() bool { return p.granted == 0 }

// Granted lista las acciones concedidas.
func (p PagePermissions) Granted() []Action { return p.granted.actions() }

// With devuelve una copia con la acción activada o desactivada.
func (p PagePermissions) With(a Action, enabled bool) (PagePermissions, error) {
	if !IsLegal(p.page, a) {
		return p, fmt.Errorf("%w: action %q not allowed on page %q", ErrInvalidPermissions, a, p.page)
	}
	b, _ := bitOf(a)
	if enabled {
		p.granted |= b
	} else {
		p.granted &^= b
	}
	return p, nil
}

// Flags devuelve todas las acciones legales de la página con su valor.
func (p PagePermissions) Flags() map[Action]bool {
	out := make(map[Action]bool)
	for _, a := range LegalActions(p.page) {
		out[a] = p.Can(a)
	}
	return out
}

func (p PagePermissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Flags())
}

// Set agrupa permisos por página. Las páginas ausentes quedan denegadas.
type Set map[Page]PagePermissions

// Get devuelve los permisos de la página o Denied si no está.
func (s Set) Get(p Page) PagePermissions {
	if pp, ok := s[p]; ok {
		return pp
	}
	return Denied(p)
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Payload convierte el Set al formato página -> acción -> bool (solo acciones legales).
func (s Set) Payload() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(s))
	for page, pp := range s {
		flags := make(map[string]bool)
		for a, v := range pp.Flags() {
			flags[string(a)] = v
		}
		out[string(page)] = flags
	}
	return out
}

// Equal compara dos Sets tratando páginas ausentes como denegadas.
func (s Set) Equal(other Set) bool {
	for _, p := range pageOrder {
		if s.Get(p).granted != other.Get(p).granted {
			return false
		}
	}
	return true
}

// Validate valida un payload página -> acción -> bool contra la tabla legal.
//   - página desconocida => ErrInvalidPermissions
//   - acción desconocida => ErrInvalidPermissions
//   - acción que no aplica a la página con true => ErrInvalidPermissions
//   - acción que no aplica con false => se ignora (equivale a ausente)
//   - página o acción repetida tras normalizar ("view" y "VIEW") => ErrInvalidPermissions
func Validate(payload map[string]map[string]bool) (Set, error) {
	out := make(Set, len(payload))
	for rawPage, flags := range payload {
		page, err := ParsePage(rawPage)
		if err != nil {
			return nil, err
		}
		if _, dup := out[page]; dup {
			return nil, fmt.Errorf("%w: page %q given more than once", ErrInvalidPermissions, page)
		}
		pp := Denied(page)
		seen := make(map[Action]struct{}, len(flags))
		for rawAction, enabled := range flags {
			action, err := ParseAction(rawAction)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[action]; dup {
				return nil, fmt.Errorf("%w: action %q given more than once on page %q", ErrInvalidPermissions, action, page)
			}
			seen[action] = struct{}{}
			if !IsLegal(page, action) {
				if enabled {
					return nil, fmt.Errorf("%w: action %q not allowed on page %q", ErrInvalidPermissions, action, page)
				}
				continue
			}
			pp, _ = pp.With(action, enabled)
		}
		out[page] = pp
	}
	return out, nil
}
