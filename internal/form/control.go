package form

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/url"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
)

// State of a date/time control.
type State string

const (
	StateEmpty   State = "empty"
	StateValid   State = "valid"
	StateInvalid State = "invalid"
)

// Control is one field bound to the form state, ready to render.
type Control struct {
	Name       string
	Label      string
	Kind       catalog.Kind
	Value      string
	Options    []string
	Required   bool
	HelperText string
	Error      bool
	State      State
}

// Checked reports whether a switch control is on.
func (c Control) Checked() bool {
	return c.Value == "true" || c.Value == "on"
}

// InputType is the HTML input type for the control's kind.
func (c Control) InputType() string {
	switch c.Kind {
	case catalog.KindInt, catalog.KindFloat:
		return "number"
	case catalog.KindDate:
		return "date"
	case catalog.KindTime:
		return "time"
	case catalog.KindDateTime:
		return "datetime-local"
	default:
		return "text"
	}
}

// Bind connects one field to the form state. raw is the submitted value (nil
// when nothing was submitted), err the field's validation error and def the
// stored value used when nothing was submitted. Invalid input is kept as-is
// so the user can correct it.
func Bind(f catalog.Field, raw *string, err error, def any) Control {
	c := Control{
		Name:     f.Name,
		Label:    f.Label,
		Kind:     f.Kind,
		Options:  f.Options,
		Required: f.Required,
	}
	if raw != nil {
		c.Value = *raw
	} else {
		c.Value = FormatValue(f, def)
	}
	if err != nil {
		c.Error = true
		c.HelperText = err.Error()
	}
	if f.IsTemporal() {
		switch {
		case c.Error:
			c.State = StateInvalid
		case c.Value == "":
			c.State = StateEmpty
		default:
			if _, perr := ParseValue(f, c.Value); perr != nil {
				c.State = StateInvalid
			} else {
				c.State = StateValid
			}
		}
	}
	return c
}

// --------------------------------------------------------------------------
// Controller
// --------------------------------------------------------------------------

// Result is the outcome of parsing one submission.
type Result struct {
	Values map[string]any    // parsed values of submitted, valid fields
	Raw    map[string]string // submitted values, unmodified
	Errors map[string]error
}

// Valid reports whether the submission may be written.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

// Err returns the first field error in field order, for callers that need a
// single error value.
func (r *Result) Err(fields []catalog.Field) error {
	for _, f := range fields {
		if err, ok := r.Errors[f.Name]; ok {
			return err
		}
	}
	return nil
}

// Controller parses submissions for a fixed set of fields.
type Controller struct {
	Fields []catalog.Field
	// Partial skips required checks for fields that were not submitted.
	Partial bool
}

// Parse reads the fields from a submitted form. Switches absent from the
// form parse as false unless the controller is partial.
func (c *Controller) Parse(values url.Values) *Result {
	res := &Result{
		Values: map[string]any{},
		Raw:    map[string]string{},
		Errors: map[string]error{},
	}
	for _, f := range c.Fields {
		raw, present := values[f.Name]
		if !present || len(raw) == 0 {
			switch {
			case f.Kind == catalog.KindBool && !c.Partial:
				res.Values[f.Name] = false
			case f.Required && !c.Partial:
				res.Errors[f.Name] = invalid(f, "%s is required", f.Label)
			}
			continue
		}
		res.Raw[f.Name] = raw[0]
		v, err := ParseValue(f, raw[0])
		if err != nil {
			res.Errors[f.Name] = err
			continue
		}
		if v == nil && f.Required {
			res.Errors[f.Name] = invalid(f, "%s is required", f.Label)
			continue
		}
		res.Values[f.Name] = v
	}
	return res
}

// Controls binds every field, preferring submitted raw values over stored
// props. res may be nil for a fresh form.
func Controls(fields []catalog.Field, props map[string]any, res *Result) []Control {
	out := make([]Control, 0, len(fields))
	for _, f := range fields {
		var raw *string
		var err error
		if res != nil {
			if v, ok := res.Raw[f.Name]; ok {
				raw = &v
			}
			err = res.Errors[f.Name]
		}
		out = append(out, Bind(f, raw, err, props[f.Name]))
	}
	return out
}

// --------------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------------

//go:embed control.html
var controlFS embed.FS

var controlTmpl = template.Must(template.ParseFS(controlFS, "control.html"))

// HTML renders a control with its label and helper text.
func HTML(c Control) (template.HTML, error) {
	var buf bytes.Buffer
	if err := controlTmpl.ExecuteTemplate(&buf, "control", c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// IsFieldError reports whether err is a validation error of a field.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
