package form_test

import (
	"testing"

	"github.com/authform/authform/internal/form"

	"gotest.tools/v3/assert"
)

func TestNewState(t *testing.T) {
	state := form.NewState()
	assert.Equal(t, form.ModeLogin, state.Mode)
	assert.Assert(t, state.IsLogin())
	assert.Equal(t, form.MessageNone, state.Message.Kind)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, form.ModeSignUp, form.ParseMode("signup"))
	assert.Equal(t, form.ModeLogin, form.ParseMode("login"))
	assert.Equal(t, form.ModeLogin, form.ParseMode(""))
	assert.Equal(t, form.ModeLogin, form.ParseMode("SIGNUP"))
}

func TestToggle(t *testing.T) {
	state := form.NewState().WithError("Invalid username/email or password.")

	toggled := state.Toggle()
	assert.Equal(t, form.ModeSignUp, toggled.Mode)
	assert.Equal(t, "", toggled.Message.Text)

	// Original value is untouched
	assert.Equal(t, form.ModeLogin, state.Mode)
	assert.Equal(t, form.MessageError, state.Message.Kind)

	assert.Equal(t, form.ModeLogin, toggled.Toggle().Mode)
}

func TestView(t *testing.T) {
	login := form.NewState().View()
	assert.Equal(t, "Login", login.Title)
	assert.Equal(t, "Login", login.SubmitLabel)
	assert.Equal(t, "Don't have an account? Sign up", login.ToggleLabel)
	assert.Equal(t, form.ModeSignUp, login.ToggleMode)
	assert.Assert(t, login.ShowRememberMe)

	signup := form.NewState().Toggle().WithError("Please enter a valid email address for sign up.").View()
	assert.Equal(t, "Sign Up", signup.Title)
	assert.Equal(t, "Already have an account? Login", signup.ToggleLabel)
	assert.Equal(t, form.ModeLogin, signup.ToggleMode)
	assert.Assert(t, !signup.ShowRememberMe)
	assert.Equal(t, form.MessageError, signup.Message.Kind)
	assert.Equal(t, "Please enter a valid email address for sign up.", signup.Message.Text)

	// The toggle link always leads to the other mode
	assert.Equal(t, form.NewState().Toggle().Mode, login.ToggleMode)
	assert.Equal(t, form.NewState().Mode, signup.ToggleMode)
}
