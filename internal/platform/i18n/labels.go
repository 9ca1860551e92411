package i18n

import (
	"golang.org/x/text/language"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

// Message keys for UI chrome.
const (
	MsgAllTypes       = "filter.allTypes"
	MsgDashboardTitle = "dashboard.title"
	MsgEmptyState     = "dashboard.empty"
	MsgNoResults      = "dashboard.noResults"
	MsgName           = "membership.name"
	MsgNumber         = "membership.number"
	MsgType           = "membership.type"
	MsgTier           = "membership.tier"
	MsgWebsite        = "membership.website"
	MsgNotes          = "membership.notes"
	MsgCreatedAt      = "membership.createdAt"
	MsgUpdatedAt      = "membership.updatedAt"
	MsgDeleteConfirm  = "membership.deleteConfirm"
)

// Labels holds the human-readable strings of one locale.
type Labels struct {
	Locale     language.Tag
	categories map[domain.MembershipType]string
	messages   map[string]string
}

// Category returns the label for t, or the raw key when t is unknown.
func (l Labels) Category(t domain.MembershipType) string {
	if v, ok := l.categories[t]; ok {
		return v
	}
	return string(t)
}

// Message returns the label for key, falling back to English and then to the key itself.
func (l Labels) Message(key string) string {
	if v, ok := l.messages[key]; ok {
		return v
	}
	if v, ok := english.messages[key]; ok {
		return v
	}
	return key
}

// Categories returns the category labels keyed by raw category key.
func (l Labels) Categories() map[string]string {
	out := make(map[string]string, len(l.categories))
	for _, t := range domain.MembershipTypes() {
		out[string(t)] = l.Category(t)
	}
	return out
}

// Messages returns a copy of every chrome label, with English fallbacks filled in.
func (l Labels) Messages() map[string]string {
	out := make(map[string]string, len(english.messages))
	for k := range english.messages {
		out[k] = l.Message(k)
	}
	return out
}

var english = Labels{
	Locale: language.English,
	categories: map[domain.MembershipType]string{
		domain.MembershipTypeAirline: "Airline",
		domain.MembershipTypeHotel:   "Hotel",
		domain.MembershipTypeCruise:  "Cruise Line",
		domain.MembershipTypeOther:   "Other",
	},
	messages: map[string]string{
		MsgAllTypes:       "All Types",
		MsgDashboardTitle: "My Memberships",
		MsgEmptyState:     "No memberships yet. Add your first loyalty program.",
		MsgNoResults:      "No memberships match your search.",
		MsgName:           "Program Name",
		MsgNumber:         "Membership Number",
		MsgType:           "Type",
		MsgTier:           "Status / Tier",
		MsgWebsite:        "Website",
		MsgNotes:          "Notes",
		MsgCreatedAt:      "Added",
		MsgUpdatedAt:      "Last updated",
		MsgDeleteConfirm:  "Are you sure you want to delete this membership?",
	},
}

var spanish = Labels{
	Locale: language.Spanish,
	categories: map[domain.MembershipType]string{
		domain.MembershipTypeAirline: "Aerolínea",
		domain.MembershipTypeHotel:   "Hotel",
		domain.MembershipTypeCruise:  "Crucero",
		domain.MembershipTypeOther:   "Otro",
	},
	messages: map[string]string{
		MsgAllTypes:       "Todos los tipos",
		MsgDashboardTitle: "Mis membresías",
		MsgEmptyState:     "Aún no hay membresías. Añade tu primer programa de fidelidad.",
		MsgNoResults:      "Ninguna membresía coincide con tu búsqueda.",
		MsgName:           "Nombre del programa",
		MsgNumber:         "Número de socio",
		MsgType:           "Tipo",
		MsgTier:           "Estado / Nivel",
		MsgWebsite:        "Sitio web",
		MsgNotes:          "Notas",
		MsgCreatedAt:      "Añadida",
		MsgUpdatedAt:      "Última actualización",
		MsgDeleteConfirm:  "¿Seguro que quieres eliminar esta membresía?",
	},
}

var french = Labels{
	Locale: language.French,
	categories: map[domain.MembershipType]string{
		domain.MembershipTypeAirline: "Compagnie aérienne",
		domain.MembershipTypeHotel:   "Hôtel",
		domain.MembershipTypeCruise:  "Croisière",
		domain.MembershipTypeOther:   "Autre",
	},
	messages: map[string]string{
		MsgAllTypes:       "Tous les types",
		MsgDashboardTitle: "Mes adhésions",
		MsgEmptyState:     "Aucune adhésion pour l'instant. Ajoutez votre premier programme de fidélité.",
		MsgNoResults:      "Aucune adhésion ne correspond à votre recherche.",
		MsgName:           "Nom du programme",
		MsgNumber:         "Numéro de membre",
		MsgType:           "Type",
		MsgTier:           "Statut / Niveau",
		MsgWebsite:        "Site web",
		MsgNotes:          "Notes",
		MsgCreatedAt:      "Ajoutée",
		MsgUpdatedAt:      "Dernière mise à jour",
		MsgDeleteConfirm:  "Voulez-vous vraiment supprimer cette adhésion ?",
	},
}

// English is the first entry: the matcher falls back to it.
var catalog = []Labels{english, spanish, french}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(catalog))
	for _, l := range catalog {
		tags = append(tags, l.Locale)
	}
	return tags
}

// Supported lists the available locales, default first.
func Supported() []language.Tag {
	return supportedTags()
}

// ForTag returns the labels best matching the given tags.
func ForTag(tags ...language.Tag) Labels {
	_, idx, _ := matcher.Match(tags...)
	if idx < 0 || idx >= len(catalog) {
		return english
	}
	return catalog[idx]
}

// Negotiate picks labels from an Accept-Language header value or a plain
// language code ("es", "fr-CA"). Malformed input yields English.
func Negotiate(accept string) Labels {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return english
	}
	return ForTag(tags...)
}
