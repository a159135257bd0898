package permissions

// AllEnabled activa todas las acciones legales de la página.
func AllEnabled(p Page) PagePermissions {
	return SetAll(p, true)
}

func AllDisabled(p Page) PagePermissions {
	return Denied(p)
}

// SetAll activa o desactiva todas las acciones legales de la página.
// Para una página desconocida devuelve permisos vacíos.
func SetAll(p Page, enabled bool) PagePermissions {
	if !enabled {
		return Denied(p)
	}
	return PagePermissions{page: p, granted: legal[p]}
}

// IsFullyEnabled es true si todas las acciones legales de la página están concedidas.
func IsFullyEnabled(p Page, pp PagePermissions) bool {
	want, ok := legal[p]
	if !ok || pp.page != p {
		return false
	}
	return pp.granted&want == want
}

// TogglePage aplica SetAll a una página y devuelve un Set nuevo.
func TogglePage(s Set, p Page, enabled bool) (Set, error) {
	if !IsKnownPage(p) {
		return s, ErrInvalidPermissions
	}
	out := s.Clone()
	out[p] = SetAll(p, enabled)
	return out, nil
}

// ToggleAllPages activa o desactiva todo en todas las páginas.
func ToggleAllPages(s Set, enabled bool) Set {
	out := s.Clone()
	for _, p := range pageOrder {
		out[p] = SetAll(p, enabled)
	}
	return out
}

// Toggle cambia una acción puntual. Una acción que no aplica a la página es error.
func Toggle(s Set, p Page, a Action, enabled bool) (Set, error) {
	if !IsKnownPage(p) {
		return s, ErrInvalidPermissions
	}
	next, err := s.Get(p).With(a, enabled)
	if err != nil {
		return s, err
	}
	out := s.Clone()
	out[p] = next
	return out, nil
}

// Union combina dos permisos de la misma página: gana el más permisivo por acción.
func Union(a, b PagePermissions) PagePermissions {
	page := a.page
	if page == "" {
		page = b.page
	}
	return PagePermissions{page: page, granted: (a.granted | b.granted) & legal[page]}
}

// AllDisabledSet tiene las doce páginas en false.
func AllDisabledSet() Set {
	return ToggleAllPages(nil, false)
}

// AllEnabledSet concede todo; es lo que ve el dueño del proyecto.
func AllEnabledSet() Set {
	return ToggleAllPages(nil, true)
}
