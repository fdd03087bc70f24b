package semantic

import "strings"

// AriaRole is a closed set of accessibility roles a SemanticNode can carry.
type AriaRole string

const (
	RolePage         AriaRole = "page"
	RoleHeading       AriaRole = "heading"
	RoleParagraph     AriaRole = "paragraph"
	RoleText          AriaRole = "text"
	RoleLink          AriaRole = "link"
	RoleButton        AriaRole = "button"
	RoleTextbox       AriaRole = "textbox"
	RoleCheckbox      AriaRole = "checkbox"
	RoleRadio         AriaRole = "radio"
	RoleCombobox      AriaRole = "combobox"
	RoleListbox       AriaRole = "listbox"
	RoleOption        AriaRole = "option"
	RoleMenu          AriaRole = "menu"
	RoleMenuItem      AriaRole = "menuitem"
	RoleTab           AriaRole = "tab"
	RoleTabList       AriaRole = "tablist"
	RoleTabPanel      AriaRole = "tabpanel"
	RoleDialog        AriaRole = "dialog"
	RoleAlert         AriaRole = "alert"
	RoleStatus        AriaRole = "status"
	RoleList          AriaRole = "list"
	RoleListItem      AriaRole = "listitem"
	RoleTable         AriaRole = "table"
	RoleRow           AriaRole = "row"
	RoleCell          AriaRole = "cell"
	RoleColumnHeader  AriaRole = "columnheader"
	RoleImage         AriaRole = "image"
	RoleForm          AriaRole = "form"
	RoleGroup         AriaRole = "group"
	RoleRegion        AriaRole = "region"
	RoleNavigation    AriaRole = "navigation"
	RoleMain          AriaRole = "main"
	RoleSeparator     AriaRole = "separator"
	RoleGeneric       AriaRole = "generic"
)

// namedRoles maps an explicit role= attribute value to a known AriaRole.
var namedRoles = map[string]AriaRole{
	"button": RoleButton, "link": RoleLink, "textbox": RoleTextbox,
	"checkbox": RoleCheckbox, "radio": RoleRadio, "combobox": RoleCombobox,
	"listbox": RoleListbox, "option": RoleOption, "menu": RoleMenu,
	"menuitem": RoleMenuItem, "tab": RoleTab, "tablist": RoleTabList,
	"tabpanel": RoleTabPanel, "dialog": RoleDialog, "alert": RoleAlert,
	"status": RoleStatus, "list": RoleList, "listitem": RoleListItem,
	"table": RoleTable, "row": RoleRow, "cell": RoleCell,
	"columnheader": RoleColumnHeader, "img": RoleImage, "image": RoleImage,
	"form": RoleForm, "group": RoleGroup, "region": RoleRegion,
	"navigation": RoleNavigation, "main": RoleMain, "separator": RoleSeparator,
	"heading": RoleHeading, "paragraph": RoleParagraph, "generic": RoleGeneric,
}

// ResolveNamedRole maps an explicit role= attribute value, returning ok=false
// if the value does not name a known role.
func ResolveNamedRole(roleAttr string) (AriaRole, bool) {
	r, ok := namedRoles[strings.ToLower(strings.TrimSpace(roleAttr))]
	return r, ok
}

// tagRoles implements the authoritative HTML tag -> role table (§6).
// Entries requiring attribute inspection are handled in RoleForTag.
var tagRoles = map[string]AriaRole{
	"nav": RoleNavigation, "main": RoleMain,
	"header": RoleRegion, "footer": RoleRegion, "aside": RoleRegion,
	"form": RoleForm, "ul": RoleList, "ol": RoleList, "li": RoleListItem,
	"table": RoleTable, "tr": RoleRow, "td": RoleCell, "th": RoleColumnHeader,
	"p": RoleParagraph, "dialog": RoleDialog, "select": RoleCombobox,
	"option": RoleOption, "textarea": RoleTextbox, "button": RoleButton,
}

var textboxInputTypes = map[string]bool{
	"text": true, "email": true, "tel": true, "url": true,
	"search": true, "number": true, "password": true,
}

// RoleForTag implements the HTML tag -> role mapping, including the
// attribute-sensitive cases (a[href], input[type=], h1..h6, img[alt]).
func RoleForTag(tag string, attrs map[string]string) (AriaRole, bool) {
	switch tag {
	case "a":
		if _, ok := attrs["href"]; ok {
			return RoleLink, true
		}
		return RoleGeneric, false
	case "input":
		typ := strings.ToLower(attrs["type"])
		switch typ {
		case "button", "submit", "reset":
			return RoleButton, true
		case "checkbox":
			return RoleCheckbox, true
		case "radio":
			return RoleRadio, true
		case "", "text", "email", "tel", "url", "search", "number", "password":
			return RoleTextbox, true
		default:
			if textboxInputTypes[typ] {
				return RoleTextbox, true
			}
			return RoleGeneric, false
		}
	case "img":
		if _, ok := attrs["alt"]; ok {
			return RoleImage, true
		}
		return RoleGeneric, false
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return RoleHeading, true
	}
	if r, ok := tagRoles[tag]; ok {
		return r, true
	}
	return RoleGeneric, false
}

// HeadingLevel extracts the numeric level from an hN tag, or 0 if not a heading tag.
func HeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// interactiveRoles is the set of roles that make a node interactive.
var interactiveRoles = map[AriaRole]bool{
	RoleLink: true, RoleButton: true, RoleTextbox: true, RoleCheckbox: true,
	RoleRadio: true, RoleCombobox: true, RoleListbox: true, RoleOption: true,
	RoleMenuItem: true, RoleTab: true,
}

// IsInteractive reports whether a node of this role is interactive by default.
// Cell is interactive only when clickable, which callers decide separately.
func IsInteractive(role AriaRole) bool {
	return interactiveRoles[role]
}
