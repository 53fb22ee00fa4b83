package apperr

import (
	"errors"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var bundle = newBundle()

func newBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	b.MustAddMessages(language.English,
		&i18n.Message{ID: string(CodeMalformedExpression), Other: "The count expression is not valid: {{.Details}}"},
		&i18n.Message{ID: string(CodeInvalidAssignment), Other: "A sector needs two different counters"},
		&i18n.Message{ID: string(CodeRoundClosed), Other: "You already finalized this round, wait for your peer"},
		&i18n.Message{ID: string(CodeIncompleteCount), Other: "{{.Count}} product(s) still need a count: {{.Details}}"},
		&i18n.Message{ID: string(CodeCycleAlreadyActive), Other: "The company already has an inventory cycle in progress"},
		&i18n.Message{ID: string(CodeNoActiveCycle), Other: "There is no inventory cycle in progress"},
		&i18n.Message{ID: string(CodeNotAssigned), Other: "You are not assigned to count this sector"},
		&i18n.Message{ID: string(CodeProductNotInScope), Other: "The product is not part of the current count: {{.Details}}"},
		&i18n.Message{ID: string(CodeSectorClosed), Other: "This sector no longer accepts changes"},
		&i18n.Message{ID: string(CodeWrongRound), Other: "The sector is in a different counting round"},
		&i18n.Message{ID: string(CodeCycleNotComplete), Other: "{{.Count}} sector(s) are not completed yet: {{.Details}}"},
		&i18n.Message{ID: string(CodeNotFound), Other: "Not found: {{.Details}}"},
		&i18n.Message{ID: string(CodeInvalidInput), Other: "Invalid request: {{.Details}}"},
		&i18n.Message{ID: string(CodeBusy), Other: "The sector is busy, please try again"},
	)
	b.MustAddMessages(language.Spanish,
		&i18n.Message{ID: string(CodeMalformedExpression), Other: "La fórmula de conteo no es válida: {{.Details}}"},
		&i18n.Message{ID: string(CodeInvalidAssignment), Other: "Un sector necesita dos contadores distintos"},
		&i18n.Message{ID: string(CodeRoundClosed), Other: "Ya finalizaste esta ronda, espera a tu compañero"},
		&i18n.Message{ID: string(CodeIncompleteCount), Other: "Faltan {{.Count}} producto(s) por contar: {{.Details}}"},
		&i18n.Message{ID: string(CodeCycleAlreadyActive), Other: "La empresa ya tiene un inventario en curso"},
		&i18n.Message{ID: string(CodeNoActiveCycle), Other: "No hay un inventario en curso"},
		&i18n.Message{ID: string(CodeNotAssigned), Other: "No estás asignado a este sector"},
		&i18n.Message{ID: string(CodeProductNotInScope), Other: "El producto no forma parte del conteo actual: {{.Details}}"},
		&i18n.Message{ID: string(CodeSectorClosed), Other: "Este sector ya no admite cambios"},
		&i18n.Message{ID: string(CodeWrongRound), Other: "El sector está en otra ronda de conteo"},
		&i18n.Message{ID: string(CodeCycleNotComplete), Other: "Hay {{.Count}} sector(es) sin completar: {{.Details}}"},
		&i18n.Message{ID: string(CodeNotFound), Other: "No encontrado: {{.Details}}"},
		&i18n.Message{ID: string(CodeInvalidInput), Other: "Solicitud inválida: {{.Details}}"},
		&i18n.Message{ID: string(CodeBusy), Other: "El sector está ocupado, intenta de nuevo"},
	)
	return b
}

// Localize renders err for the first supported language in langs (values as
// found in an Accept-Language header). Errors outside the taxonomy are
// returned verbatim.
func Localize(err error, langs ...string) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	details := strings.Join(e.Details, ", ")
	if details == "" && e.Err != nil {
		details = e.Err.Error()
	}
	loc := i18n.NewLocalizer(bundle, langs...)
	msg, lerr := loc.Localize(&i18n.LocalizeConfig{
		MessageID: string(e.Code),
		TemplateData: map[string]interface{}{
			"Details": details,
			"Count":   len(e.Details),
		},
	})
	if lerr != nil {
		return e.Error()
	}
	return msg
}
