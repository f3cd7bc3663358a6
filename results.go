package ward

// Every public operation returns a closed, operation-specific result
// enumeration. Results are business outcomes: callers branch on them, they
// are never folded into the error return, and the error return is never
// used for any value listed here.

// LogInResult is returned by [Engine.LogIn].
type LogInResult int

const (
	// LogInSuccess means the primary session was established.
	LogInSuccess LogInResult = iota
	// LogInTwoFactorRequired means credentials were correct but the account
	// has two-factor enabled: a pending session was established and a code
	// was delivered. The primary session is untouched.
	LogInTwoFactorRequired
	// LogInInvalidEmail means no account exists for the given email.
	LogInInvalidEmail
	// LogInInvalidPassword means the password did not match. No session
	// state changed.
	LogInInvalidPassword
)

func (r LogInResult) String() string {
	switch r {
	case LogInSuccess:
		return "Success"
	case LogInTwoFactorRequired:
		return "TwoFactorRequired"
	case LogInInvalidEmail:
		return "InvalidEmail"
	case LogInInvalidPassword:
		return "InvalidPassword"
	}
	return "Unknown"
}

// TwoFactorLogInResult is returned by [Engine.TwoFactorLogIn].
type TwoFactorLogInResult int

const (
	// TwoFactorSuccess means the pending session was promoted to a primary
	// session.
	TwoFactorSuccess TwoFactorLogInResult = iota
	// TwoFactorInvalidCredentials means there is no usable pending session
	// to correlate the code with.
	TwoFactorInvalidCredentials
	// TwoFactorInvalidCode means the code did not validate. The pending
	// session is retained so the caller may retry.
	TwoFactorInvalidCode
)

func (r TwoFactorLogInResult) String() string {
	switch r {
	case TwoFactorSuccess:
		return "Success"
	case TwoFactorInvalidCredentials:
		return "InvalidCredentials"
	case TwoFactorInvalidCode:
		return "InvalidCode"
	}
	return "Unknown"
}

// SignUpResult is returned by [Engine.SignUp].
type SignUpResult int

const (
	SignUpSuccess SignUpResult = iota
	SignUpEmailInUse
)

func (r SignUpResult) String() string {
	switch r {
	case SignUpSuccess:
		return "Success"
	case SignUpEmailInUse:
		return "EmailInUse"
	}
	return "Unknown"
}

// SetPasswordResult is returned by [Engine.SetPassword].
//
// The password mutator authenticates before disclosing state: the current
// password is verified first, and only then is "new password equals the
// current one" reported, as SetPasswordInvalidNew.
type SetPasswordResult int

const (
	SetPasswordSuccess SetPasswordResult = iota
	SetPasswordInvalidCurrent
	SetPasswordInvalidNew
)

func (r SetPasswordResult) String() string {
	switch r {
	case SetPasswordSuccess:
		return "Success"
	case SetPasswordInvalidCurrent:
		return "InvalidCurrentPassword"
	case SetPasswordInvalidNew:
		return "InvalidNewPassword"
	}
	return "Unknown"
}

// SetEmailResult is returned by [Engine.SetEmail].
type SetEmailResult int

const (
	SetEmailSuccess SetEmailResult = iota
	SetEmailAlreadySet
	SetEmailInvalidPassword
	SetEmailInUse
)

func (r SetEmailResult) String() string {
	switch r {
	case SetEmailSuccess:
		return "Success"
	case SetEmailAlreadySet:
		return "AlreadySet"
	case SetEmailInvalidPassword:
		return "InvalidPassword"
	case SetEmailInUse:
		return "EmailInUse"
	}
	return "Unknown"
}

// SetAltEmailResult is returned by [Engine.SetAltEmail].
type SetAltEmailResult int

const (
	SetAltEmailSuccess SetAltEmailResult = iota
	SetAltEmailAlreadySet
	SetAltEmailInvalidPassword
	SetAltEmailInUse
)

func (r SetAltEmailResult) String() string {
	switch r {
	case SetAltEmailSuccess:
		return "Success"
	case SetAltEmailAlreadySet:
		return "AlreadySet"
	case SetAltEmailInvalidPassword:
		return "InvalidPassword"
	case SetAltEmailInUse:
		return "EmailInUse"
	}
	return "Unknown"
}

// SetDisplayNameResult is returned by [Engine.SetDisplayName].
type SetDisplayNameResult int

const (
	SetDisplayNameSuccess SetDisplayNameResult = iota
	SetDisplayNameAlreadySet
	SetDisplayNameInvalidPassword
	SetDisplayNameInUse
)

func (r SetDisplayNameResult) String() string {
	switch r {
	case SetDisplayNameSuccess:
		return "Success"
	case SetDisplayNameAlreadySet:
		return "AlreadySet"
	case SetDisplayNameInvalidPassword:
		return "InvalidPassword"
	case SetDisplayNameInUse:
		return "DisplayNameInUse"
	}
	return "Unknown"
}

// SetTwoFactorResult is returned by [Engine.SetTwoFactorEnabled].
type SetTwoFactorResult int

const (
	SetTwoFactorSuccess SetTwoFactorResult = iota
	SetTwoFactorAlreadySet
	SetTwoFactorInvalidPassword
	// SetTwoFactorEmailUnverified means enabling was refused because the
	// primary email is unverified; a fresh verification email was sent.
	SetTwoFactorEmailUnverified
)

func (r SetTwoFactorResult) String() string {
	switch r {
	case SetTwoFactorSuccess:
		return "Success"
	case SetTwoFactorAlreadySet:
		return "AlreadySet"
	case SetTwoFactorInvalidPassword:
		return "InvalidPassword"
	case SetTwoFactorEmailUnverified:
		return "EmailUnverified"
	}
	return "Unknown"
}

// MarkVerifiedResult is returned by [Engine.SetEmailVerified] and
// [Engine.SetAltEmailVerified].
type MarkVerifiedResult int

const (
	MarkVerifiedSuccess MarkVerifiedResult = iota
	MarkVerifiedAlreadySet
	MarkVerifiedInvalidToken
)

func (r MarkVerifiedResult) String() string {
	switch r {
	case MarkVerifiedSuccess:
		return "Success"
	case MarkVerifiedAlreadySet:
		return "AlreadySet"
	case MarkVerifiedInvalidToken:
		return "InvalidToken"
	}
	return "Unknown"
}

// SendResetResult is returned by [Engine.SendResetPasswordEmail].
type SendResetResult int

const (
	SendResetSent SendResetResult = iota
	SendResetInvalidEmail
)

func (r SendResetResult) String() string {
	switch r {
	case SendResetSent:
		return "Sent"
	case SendResetInvalidEmail:
		return "InvalidEmail"
	}
	return "Unknown"
}

// ResetPasswordResult is returned by [Engine.ResetPassword].
type ResetPasswordResult int

const (
	ResetPasswordSuccess ResetPasswordResult = iota
	ResetPasswordInvalidEmail
	ResetPasswordInvalidToken
	// ResetPasswordInvalidNew means the replacement password is unusable,
	// including the case where it equals the current password. This is
	// reported before any token is validated.
	ResetPasswordInvalidNew
)

func (r ResetPasswordResult) String() string {
	switch r {
	case ResetPasswordSuccess:
		return "Success"
	case ResetPasswordInvalidEmail:
		return "InvalidEmail"
	case ResetPasswordInvalidToken:
		return "InvalidToken"
	case ResetPasswordInvalidNew:
		return "InvalidNewPassword"
	}
	return "Unknown"
}

// SendVerificationResult is returned by [Engine.SendEmailVerificationEmail]
// and [Engine.SendAltEmailVerificationEmail].
type SendVerificationResult int

const (
	SendVerificationSent SendVerificationResult = iota
	SendVerificationAlreadyVerified
	// SendVerificationNoAltEmail applies to the alt-email variant only.
	SendVerificationNoAltEmail
)

func (r SendVerificationResult) String() string {
	switch r {
	case SendVerificationSent:
		return "Sent"
	case SendVerificationAlreadyVerified:
		return "AlreadyVerified"
	case SendVerificationNoAltEmail:
		return "NoAltEmail"
	}
	return "Unknown"
}

// TwoFactorVerifyEmailResult is returned by [Engine.TwoFactorVerifyEmail].
type TwoFactorVerifyEmailResult int

const (
	TwoFactorVerifyEmailSuccess TwoFactorVerifyEmailResult = iota
	TwoFactorVerifyEmailAlreadySet
	TwoFactorVerifyEmailInvalidCode
	TwoFactorVerifyEmailNoAccount
)

func (r TwoFactorVerifyEmailResult) String() string {
	switch r {
	case TwoFactorVerifyEmailSuccess:
		return "Success"
	case TwoFactorVerifyEmailAlreadySet:
		return "AlreadySet"
	case TwoFactorVerifyEmailInvalidCode:
		return "InvalidCode"
	case TwoFactorVerifyEmailNoAccount:
		return "NoLoggedInAccount"
	}
	return "Unknown"
}
