// Package form holds the state of the login / sign-up form.
//
// The state is a plain value: handlers receive one and return a new one, the
// mode travels between requests in the "mode" query parameter.
package form

type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignUp Mode = "signup"
)

type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageError   MessageKind = "error"
	MessageSuccess MessageKind = "success"
)

// Message is the single slot message area under the form. Only the most
// recent message is kept.
type Message struct {
	Text string
	Kind MessageKind
}

type State struct {
	Mode    Mode
	Message Message
}

// View is what the template needs to draw the form for a given state.
type View struct {
	Mode           Mode
	Title          string
	SubmitLabel    string
	ToggleLabel    string
	ToggleMode     Mode
	ShowRememberMe bool
	Message        Message
}

func NewState() State {
	return State{Mode: ModeLogin}
}

// ParseMode falls back to login for anything it does not know.
func ParseMode(mode string) Mode {
	if Mode(mode) == ModeSignUp {
		return ModeSignUp
	}
	return ModeLogin
}

func (s State) IsLogin() bool {
	return s.Mode != ModeSignUp
}

// Toggle switches mode and clears the message area.
func (s State) Toggle() State {
	if s.IsLogin() {
		return State{Mode: ModeSignUp}
	}
	return State{Mode: ModeLogin}
}

func (s State) WithError(text string) State {
	s.Message = Message{Text: text, Kind: MessageError}
	return s
}

func (s State) View() View {
	toggle := s.Toggle().Mode

	if s.IsLogin() {
		return View{
			Mode:           ModeLogin,
			Title:          "Login",
			SubmitLabel:    "Login",
			ToggleLabel:    "Don't have an account? Sign up",
			ToggleMode:     toggle,
			ShowRememberMe: true,
			Message:        s.Message,
		}
	}
	return View{
		Mode:           ModeSignUp,
		Title:          "Sign Up",
		SubmitLabel:    "Sign Up",
		ToggleLabel:    "Already have an account? Login",
		ToggleMode:     toggle,
		ShowRememberMe: false,
		Message:        s.Message,
	}
}
