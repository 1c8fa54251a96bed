package validators

import (
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator validates request bodies for echo and records coming out of the
// store.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the gallery's struct rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(feedEventRules, models.FeedEvent{})
	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Record validates a store record.
func (v *Validator) Record(r models.Record) error {
	return v.validate.Struct(r)
}

// A reaction event must carry its emoji and a comment event its text.
func feedEventRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(models.FeedEvent)
	switch e.Kind {
	case models.FeedEventReaction:
		if e.Payload.Emoji == "" {
			sl.ReportError(e.Payload.Emoji, "Payload.Emoji", "Emoji", "required_for_reaction", "")
		}
	case models.FeedEventComment:
		if e.Payload.Text == "" {
			sl.ReportError(e.Payload.Text, "Payload.Text", "Text", "required_for_comment", "")
		}
	}
}
