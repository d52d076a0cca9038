package form

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
)

var (
	nameField     = catalog.Field{Name: "firstName", Label: "First name", Kind: catalog.KindString, Required: true}
	birthdayField = catalog.Field{Name: "birthday", Label: "Birthday", Kind: catalog.KindDate}
	startField    = catalog.Field{Name: "startTime", Label: "Start time", Kind: catalog.KindTime}
	heightField   = catalog.Field{Name: "height", Label: "Height", Kind: catalog.KindInt}
	stickField    = catalog.Field{Name: "stick", Label: "Stick", Kind: catalog.KindSelect, Options: []string{"LEFT", "RIGHT"}}
	captainField  = catalog.Field{Name: "captain", Label: "Captain", Kind: catalog.KindBool}
	faceoffField  = catalog.Field{Name: "faceoff", Label: "Faceoff", Kind: catalog.KindDateTime}
)

func TestBindShowsErrorMessageVerbatim(t *testing.T) {
	messages := []string{
		"First name is required",
		`Weird <chars> & "quotes"`,
		"Jersey 68 is already taken on this team",
	}
	for _, msg := range messages {
		c := Bind(nameField, nil, errors.New(msg), "Jaromir")
		assert.True(t, c.Error)
		assert.Equal(t, msg, c.HelperText)
		assert.Equal(t, "Jaromir", c.Value, "input is still pre-populated")

		html, err := HTML(c)
		require.NoError(t, err)
		assert.Contains(t, string(html), `class="helper-text"`)
	}
}

func TestHTMLRendersHelperTextEscaped(t *testing.T) {
	c := Bind(nameField, nil, errors.New("Use <b>letters</b> only"), "")
	html, err := HTML(c)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Use &lt;b&gt;letters&lt;/b&gt; only")
}

func TestBindWithoutErrorHasNoHelperText(t *testing.T) {
	c := Bind(heightField, nil, nil, 185)
	assert.False(t, c.Error)
	assert.Empty(t, c.HelperText)
	assert.Equal(t, "185", c.Value)
	assert.Equal(t, "number", c.InputType())
}

func TestDateControlStates(t *testing.T) {
	empty := Bind(birthdayField, nil, nil, nil)
	assert.Equal(t, StateEmpty, empty.State)

	valid := Bind(birthdayField, nil, nil, "1972-02-15")
	assert.Equal(t, StateValid, valid.State)

	raw := "15/02/1972"
	bad := Bind(birthdayField, &raw, nil, nil)
	assert.Equal(t, StateInvalid, bad.State)
	assert.Equal(t, raw, bad.Value, "invalid input is passed through, not rejected")

	nonTemporal := Bind(nameField, nil, nil, "x")
	assert.Equal(t, State(""), nonTemporal.State)
}

func TestDateTimeLocalSubmission(t *testing.T) {
	c := &Controller{Fields: []catalog.Field{faceoffField}}
	res := c.Parse(url.Values{"faceoff": {"2024-03-01T19:30"}})
	require.True(t, res.Valid(), "%v", res.Errors)
	assert.Equal(t, "2024-03-01T19:30:00Z", res.Values["faceoff"])

	ctl := Bind(faceoffField, nil, nil, res.Values["faceoff"])
	assert.Equal(t, "datetime-local", ctl.InputType())
	assert.Equal(t, "2024-03-01T19:30", ctl.Value)
	assert.Equal(t, StateValid, ctl.State)

	v, err := ParseValue(faceoffField, "2024-03-01T20:30:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T19:30:00Z", v)

	_, err = ParseValue(faceoffField, "01.03.2024 19:30")
	assert.True(t, IsFieldError(err))
}

func TestControllerParsesByKind(t *testing.T) {
	c := &Controller{Fields: []catalog.Field{nameField, birthdayField, startField, heightField, stickField, captainField}}
	res := c.Parse(url.Values{
		"firstName": {"Jaromir"},
		"birthday":  {"1972-02-15"},
		"startTime": {"19:30"},
		"height":    {"191"},
		"stick":     {"LEFT"},
	})
	require.True(t, res.Valid(), "%v", res.Errors)
	assert.Equal(t, map[string]any{
		"firstName": "Jaromir",
		"birthday":  "1972-02-15",
		"startTime": "19:30",
		"height":    191,
		"stick":     "LEFT",
		"captain":   false,
	}, res.Values)
}

func TestControllerRecordsInvalidInputAndKeepsRaw(t *testing.T) {
	c := &Controller{Fields: []catalog.Field{nameField, birthdayField, heightField, stickField}}
	res := c.Parse(url.Values{
		"firstName": {""},
		"birthday":  {"yesterday"},
		"height":    {"tall"},
		"stick":     {"BOTH"},
	})
	assert.False(t, res.Valid())
	assert.Len(t, res.Errors, 4)
	assert.Equal(t, "First name is required", res.Errors["firstName"].Error())
	assert.Equal(t, "yesterday", res.Raw["birthday"])
	assert.True(t, IsFieldError(res.Errors["height"]))
	assert.Equal(t, res.Errors["firstName"], res.Err(c.Fields))

	controls := Controls(c.Fields, map[string]any{"birthday": "1972-02-15"}, res)
	require.Len(t, controls, 4)
	assert.Equal(t, "yesterday", controls[1].Value)
	assert.Equal(t, StateInvalid, controls[1].State)
	assert.Equal(t, res.Errors["birthday"].Error(), controls[1].HelperText)
}

func TestPartialControllerSkipsMissing(t *testing.T) {
	c := &Controller{Fields: []catalog.Field{nameField, captainField}, Partial: true}
	res := c.Parse(url.Values{})
	assert.True(t, res.Valid())
	assert.Empty(t, res.Values)
}

func TestSwitchControl(t *testing.T) {
	on := Bind(captainField, nil, nil, true)
	assert.True(t, on.Checked())
	html, err := HTML(on)
	require.NoError(t, err)
	assert.Contains(t, string(html), "checked")

	v, err := ParseValue(captainField, "on")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}
