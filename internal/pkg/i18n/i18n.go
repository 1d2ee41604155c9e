// Package i18n holds the user-facing message catalog.
//
// Keys are the English messages; other locales are registered in the catalog
// built at package init. A Translator falls back to the key when its locale has
// no entry.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLocale is the locale the API answers in when none is configured.
const DefaultLocale = "pt-BR"

// Message keys.
const (
	MsgHabitNotFound = "Habit not found"
	MsgForbidden     = "You do not have permission to access this resource"
	MsgInvalidData   = "Invalid data"
	MsgUnauthorized  = "Unauthorized access"
	MsgInternal      = "Internal server error"
	MsgNameTooShort  = "Name must have at least 2 characters"

	MsgHabitCreated = "Habit created successfully"
	MsgHabitUpdated = "Habit updated successfully"
	MsgHabitDeleted = "Habit deleted successfully"

	MsgCreateFailed = "Error creating habit"
	MsgListFailed   = "Error fetching habits"
	MsgGetFailed    = "Error fetching habit"
	MsgUpdateFailed = "Error updating habit"
	MsgDeleteFailed = "Error deleting habit"
)

var portuguese = map[string]string{
	MsgHabitNotFound: "Hábito não encontrado",
	MsgForbidden:     "Você não tem permissão para acessar este recurso",
	MsgInvalidData:   "Dados inválidos",
	MsgUnauthorized:  "Acesso não autorizado",
	MsgInternal:      "Erro interno do servidor",
	MsgNameTooShort:  "Nome deve ter pelo menos 2 caracteres",

	MsgHabitCreated: "Hábito criado com sucesso",
	MsgHabitUpdated: "Hábito atualizado com sucesso",
	MsgHabitDeleted: "Hábito deletado com sucesso",

	MsgCreateFailed: "Erro ao criar hábito",
	MsgListFailed:   "Erro ao buscar hábitos",
	MsgGetFailed:    "Erro ao buscar hábito",
	MsgUpdateFailed: "Erro ao atualizar hábito",
	MsgDeleteFailed: "Erro ao deletar hábito",
}

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range portuguese {
		// Registered under "pt" so pt-BR and pt-PT both resolve through Parent().
		if err := b.SetString(language.Portuguese, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: register %q: %v", key, err))
		}
	}
	return b
}

// Translator renders message keys in a single locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the given BCP 47 locale. An empty locale
// selects DefaultLocale.
func New(locale string) (Translator, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Translator{}, fmt.Errorf("i18n: parse locale %q: %w", locale, err)
	}
	return Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}, nil
}

// MustNew is like New but panics on an invalid locale.
func MustNew(locale string) Translator {
	t, err := New(locale)
	if err != nil {
		panic(err)
	}
	return t
}

// Tag reports the locale of the translator.
func (t Translator) Tag() language.Tag {
	return t.tag
}

// T returns the localized text for key. A zero Translator returns the key.
func (t Translator) T(key string) string {
	if t.printer == nil {
		return key
	}
	return t.printer.Sprintf(key)
}
