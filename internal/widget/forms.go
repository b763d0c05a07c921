package widget

import "fmt"

// FormKind enumerates the widget form types. The set is closed: dispatch over
// it is an exhaustive switch, not a string-keyed lookup.
type FormKind int

const (
	FormLogin FormKind = iota
	FormRegistration
	FormForgotPassword
	FormResetPassword
	FormUpdateProfile
	FormChangePassword
	FormSocialLogin
)

func (k FormKind) String() string {
	switch k {
	case FormLogin:
		return "login"
	case FormRegistration:
		return "registration"
	case FormForgotPassword:
		return "forgotPassword"
	case FormResetPassword:
		return "resetPassword"
	case FormUpdateProfile:
		return "updateProfile"
	case FormChangePassword:
		return "changePassword"
	case FormSocialLogin:
		return "socialLogin"
	}
	return fmt.Sprintf("FormKind(%d)", int(k))
}

// Form binds a form kind to its per-page options. Descriptors are ephemeral;
// one set is constructed per page load from the declarative markup.
type Form struct {
	Kind    FormKind
	Options FormOptions
}

type FormOptions struct {
	ContainerID string
	OnSuccess   func(rawResponse []byte)
	OnError     func(errs []CallbackError)
}

// CallbackError is a provider-side validation failure delivered to a form's
// error callback. The CAPTCHA layer reports its message lowercase, so both
// spellings are kept.
type CallbackError struct {
	ErrorCode    int    `json:"ErrorCode"`
	Message      string `json:"Message"`
	LowerMessage string `json:"message"`
	Description  string `json:"Description"`
}

// DisplayMessage returns the user-facing text of the error.
func (e CallbackError) DisplayMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.LowerMessage
}

// FormContext is an initialized widget context for one form. Every form gets
// an independent context sharing only the common configuration; registration
// additionally carries the SOTT it cannot be constructed without.
type FormContext struct {
	Kind             FormKind
	ContainerID      string
	APIKey           string
	AppName          string
	HashTemplate     bool
	ResetPasswordURL string
	VerificationURL  string
	SOTT             string
	RecaptchaSiteKey string
}
